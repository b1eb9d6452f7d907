package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"pkt.systems/nikiai/schema"
)

// Event reports a change to a note on disk.
type Event struct {
	Path    schema.NotePath
	Removed bool
}

// Watch invalidates cached note content as files change and reports note
// changes on the returned channel until ctx is done.
func (v *Vault) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := v.addDirs(watcher, v.root); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				v.handle(watcher, ev, out)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if v.log != nil {
					v.log.Warn("vault watch error", "err", err)
				}
			}
		}
	}()
	if v.log != nil {
		v.log.Debug("vault watch started")
	}
	return out, nil
}

func (v *Vault) handle(watcher *fsnotify.Watcher, ev fsnotify.Event, out chan<- Event) {
	name := filepath.Clean(ev.Name)
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := v.addDirs(watcher, name); err != nil && v.log != nil {
				v.log.Warn("vault watch add failed", "path", name, "err", err)
			}
			return
		}
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), ".md") {
		return
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	v.Invalidate(name)
	rel, ok := v.Rel(name)
	if !ok {
		return
	}
	event := Event{Path: rel, Removed: ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)}
	if v.log != nil {
		v.log.Trace("vault note changed", "note", event.Path, "op", ev.Op.String())
	}
	select {
	case out <- event:
	default:
		if v.log != nil {
			v.log.Debug("vault watch event dropped", "note", event.Path)
		}
	}
}

func (v *Vault) addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != v.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
