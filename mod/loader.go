package mod

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/milk9111/systematic/engine"
	"github.com/milk9111/systematic/level"
)

var ErrNotLoaded = errors.New("mod: not loaded")

// Mod is one loaded mod and everything it registered with the engine.
type Mod struct {
	Manifest *Manifest
	// Dir is the absolute directory on disk, empty for embedded mods.
	Dir string

	fsys     fs.FS
	root     string
	scripts  []*script
	tiles    []level.TileID
	emitters []string
}

func (m *Mod) Name() string { return m.Manifest.Name }

// Loader owns the mods registered with one engine.
type Loader struct {
	eng    *engine.Engine
	logger *log.Logger
	mods   map[string]*Mod
	order  []string
}

func NewLoader(eng *engine.Engine) *Loader {
	return &Loader{
		eng:    eng,
		logger: eng.Logger(),
		mods:   make(map[string]*Mod),
	}
}

// LoadDir loads the mod whose mod.yaml sits in dir.
func (l *Loader) LoadDir(dir string) (*Mod, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("mod: load %s: %w", dir, err)
	}
	m, err := l.LoadFS(os.DirFS(abs), ".")
	if err != nil {
		return nil, err
	}
	m.Dir = abs
	return m, nil
}

// LoadAll loads every immediate subdirectory of root holding a mod.yaml and
// returns the names loaded. A broken mod is logged and skipped.
func (l *Loader) LoadAll(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("mod: read %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			continue
		}
		m, err := l.LoadDir(dir)
		if err != nil {
			l.logger.Printf("mod: skipping %s: %v", dir, err)
			continue
		}
		names = append(names, m.Name())
	}
	return names, nil
}

// LoadFS loads the mod rooted at dir inside fsys. Loading a name that is
// already loaded replaces it. On error nothing stays registered.
func (l *Loader) LoadFS(fsys fs.FS, dir string) (*Mod, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("mod: load %s: %w", path.Join(dir, ManifestFile), err)
	}
	man, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	type source struct {
		name string
		src  []byte
	}
	sources := make([]source, 0, len(man.Scripts))
	for _, name := range man.Scripts {
		src, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("mod: load %s/%s: %w", man.Name, name, err)
		}
		sources = append(sources, source{name: name, src: src})
	}

	m := &Mod{Manifest: man, fsys: fsys, root: dir}
	for _, s := range sources {
		sc, err := compileScript(l.eng, man.Name, s.name, s.src)
		if err != nil {
			return nil, err
		}
		m.scripts = append(m.scripts, sc)
	}

	if _, ok := l.mods[man.Name]; ok {
		l.Unload(man.Name)
	}

	for _, t := range man.Tiles {
		if err := l.eng.RegisterTile(t.def()); err != nil {
			l.release(m)
			return nil, fmt.Errorf("mod: %s: %w", man.Name, err)
		}
		m.tiles = append(m.tiles, level.TileID(t.ID))
		if len(t.Schema) > 0 {
			l.eng.RegisterTilePropertySchema(level.TileID(t.ID), t.Schema)
		}
	}
	for name, spec := range man.Emitters {
		l.eng.RegisterEmitter(name, spec.emitter())
		m.emitters = append(m.emitters, name)
	}
	for _, sc := range m.scripts {
		sc.attach()
	}

	l.mods[man.Name] = m
	l.order = append(l.order, man.Name)
	l.logger.Printf("mod: loaded %s (%d scripts, %d tiles)", man.Name, len(m.scripts), len(m.tiles))
	return m, nil
}

// Unload removes every listener, tile and emitter the mod registered.
// Tiles already placed in a grid keep their ids.
func (l *Loader) Unload(name string) bool {
	m, ok := l.mods[name]
	if !ok {
		return false
	}
	l.release(m)
	delete(l.mods, name)
	l.order = slices.DeleteFunc(l.order, func(n string) bool { return n == name })
	return true
}

func (l *Loader) release(m *Mod) {
	for _, sc := range m.scripts {
		sc.detach()
	}
	for _, id := range m.tiles {
		l.eng.UnregisterTile(id)
	}
	for _, name := range m.emitters {
		l.eng.UnregisterEmitter(name)
	}
}

// Reload reads a loaded mod again from where it came from. If the new copy
// fails to load the old one stays active.
func (l *Loader) Reload(name string) error {
	m, ok := l.mods[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	next, err := l.LoadFS(m.fsys, m.root)
	if err != nil {
		return err
	}
	next.Dir = m.Dir
	if next.Name() != name {
		// The manifest was renamed; drop the stale registration.
		l.Unload(name)
	}
	return nil
}

func (l *Loader) Mod(name string) (*Mod, bool) {
	m, ok := l.mods[name]
	return m, ok
}

// Names lists loaded mods in load order.
func (l *Loader) Names() []string {
	return slices.Clone(l.order)
}

// ModForPath maps a changed file to the loaded disk mod containing it.
func (l *Loader) ModForPath(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	for _, name := range l.order {
		m := l.mods[name]
		if m.Dir == "" {
			continue
		}
		rel, err := filepath.Rel(m.Dir, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return name, true
	}
	return "", false
}

// Dirs lists the directories of loaded disk mods, for the watcher.
func (l *Loader) Dirs() []string {
	var dirs []string
	for _, name := range l.order {
		if d := l.mods[name].Dir; d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
