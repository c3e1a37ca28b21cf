package level

// Levels is the ordered set of grids in a session plus the current index.
type Levels struct {
	grids   []*Grid
	current int
}

func NewLevels(first *Grid) *Levels {
	return &Levels{grids: []*Grid{first}}
}

func (l *Levels) Add(g *Grid) int {
	l.grids = append(l.grids, g)
	return len(l.grids) - 1
}

// Select makes level i current. Out of range indices are rejected.
func (l *Levels) Select(i int) bool {
	if i < 0 || i >= len(l.grids) {
		return false
	}
	l.current = i
	return true
}

func (l *Levels) Replace(i int, g *Grid) bool {
	if i < 0 || i >= len(l.grids) || g == nil {
		return false
	}
	l.grids[i] = g
	return true
}

func (l *Levels) Current() *Grid {
	return l.grids[l.current]
}

func (l *Levels) CurrentIndex() int {
	return l.current
}

func (l *Levels) Len() int {
	return len(l.grids)
}

func (l *Levels) At(i int) *Grid {
	if i < 0 || i >= len(l.grids) {
		return nil
	}
	return l.grids[i]
}
