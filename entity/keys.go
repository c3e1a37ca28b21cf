package entity

// Keys is the set of logical key names currently held.
type Keys map[string]bool

func (k Keys) Down(name string) bool {
	return k[name]
}

func (k Keys) Press(name string) {
	k[name] = true
}

func (k Keys) Release(name string) {
	delete(k, name)
}

func (k Keys) Left() bool {
	return k["a"] || k["ArrowLeft"]
}

func (k Keys) Right() bool {
	return k["d"] || k["ArrowRight"]
}

func (k Keys) Up() bool {
	return k["w"] || k["ArrowUp"]
}

func (k Keys) Drop() bool {
	return k["s"] || k["ArrowDown"]
}
