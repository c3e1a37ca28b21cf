package mod

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed builtin
var builtinFS embed.FS

// Builtin lists the mods shipped inside the binary.
func Builtin() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// LoadBuiltin loads shipped mods by directory name. With no names it loads
// all of them.
func (l *Loader) LoadBuiltin(names ...string) error {
	if len(names) == 0 {
		names = Builtin()
	}
	for _, name := range names {
		if _, err := l.LoadFS(builtinFS, path.Join("builtin", name)); err != nil {
			return fmt.Errorf("mod: builtin %s: %w", name, err)
		}
	}
	return nil
}
