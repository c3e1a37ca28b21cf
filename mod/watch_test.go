package mod

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAllFromDisk(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good", ManifestFile), testManifest)
	writeFile(t, filepath.Join(root, "good", "main.tengo"), "onUpdate := func(api, state, player, args) {}\n")
	writeFile(t, filepath.Join(root, "broken", ManifestFile), "name: \"\"\n")
	writeFile(t, filepath.Join(root, "empty", "notes.txt"), "not a mod")

	l, _, logs := newTestLoader(t)
	names, err := l.LoadAll(root)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(names) != 1 || names[0] != "test" {
		t.Fatalf("loaded %v, want [test]", names)
	}
	if !strings.Contains(logs.String(), "mod: skipping") {
		t.Fatalf("broken mod not logged: %q", logs.String())
	}

	t.Run("mod for path", func(t *testing.T) {
		if name, ok := l.ModForPath(filepath.Join(root, "good", "main.tengo")); !ok || name != "test" {
			t.Fatalf("ModForPath(script) = %q, %v", name, ok)
		}
		if _, ok := l.ModForPath(filepath.Join(root, "goodbye", "main.tengo")); ok {
			t.Fatalf("sibling directory matched")
		}
		if _, ok := l.ModForPath(filepath.Join(root, "broken", ManifestFile)); ok {
			t.Fatalf("unloaded mod matched")
		}
	})

	t.Run("dirs", func(t *testing.T) {
		dirs := l.Dirs()
		want, _ := filepath.Abs(filepath.Join(root, "good"))
		if len(dirs) != 1 || dirs[0] != want {
			t.Fatalf("Dirs() = %v, want [%s]", dirs, want)
		}
	})

	if _, err := l.LoadAll(filepath.Join(root, "missing")); err == nil {
		t.Fatalf("LoadAll of a missing root should fail")
	}
}

func TestWatcherReportsScripts(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "ignored.txt"), "x")
	script := filepath.Join(dir, "main.tengo")
	writeFile(t, script, "x := 1\n")

	timeout := time.After(2 * time.Second)
wait:
	for {
		select {
		case p := <-w.Events:
			if strings.HasSuffix(p, ".txt") {
				t.Fatalf("non mod file reported: %s", p)
			}
			if p == script {
				break wait
			}
		case <-timeout:
			t.Fatalf("no event for %s", script)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	for _, p := range w.Drain() {
		if strings.HasSuffix(p, ".txt") {
			t.Fatalf("non mod file reported: %s", p)
		}
	}
}

func TestWatcherPicksUpNewModDirectory(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.AddRoot(root); err != nil {
		t.Fatalf("AddRoot: %v", err)
	}

	manifest := filepath.Join(root, "fresh", ManifestFile)
	if err := os.Mkdir(filepath.Dir(manifest), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// The new directory is added asynchronously; keep touching the manifest
	// until the watcher reports it.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		writeFile(t, manifest, testManifest)
		time.Sleep(150 * time.Millisecond)
		for _, p := range w.Drain() {
			if p == manifest {
				return
			}
		}
	}
	t.Fatalf("no event for %s", manifest)
}
