package vault

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

// Vault is a directory of Markdown notes.
type Vault struct {
	root  string
	log   pslog.Logger
	mu    sync.Mutex
	cache map[string]string
}

// Open constructs a vault rooted at dir.
func Open(dir string) (*Vault, error) {
	return OpenWithLogger(dir, nil)
}

// OpenWithLogger constructs a vault with logging.
func OpenWithLogger(dir string, logger pslog.Logger) (*Vault, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("vault directory is required")
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "open vault", Path: root, Err: errors.New("not a directory")}
	}
	if logger != nil {
		logger = logger.With("vault", root)
	}
	return &Vault{root: root, log: logger, cache: make(map[string]string)}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// Abs maps a note path to a filesystem path. External notes keep their absolute path.
func (v *Vault) Abs(p schema.NotePath) (string, error) {
	raw := string(p)
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), nil
	}
	normalized, err := schema.NormalizeNotePath(raw)
	if err != nil {
		return "", err
	}
	return filepath.Join(v.root, filepath.FromSlash(string(normalized))), nil
}

// Rel maps a filesystem path inside the vault to a note path.
func (v *Vault) Rel(abs string) (schema.NotePath, bool) {
	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", false
	}
	return schema.NotePath(filepath.ToSlash(rel)), true
}

// Ref returns a NoteRef for p, marking paths outside the vault as external.
func (v *Vault) Ref(p schema.NotePath) schema.NoteRef {
	ref := schema.NewNoteRef(p)
	ref.External = filepath.IsAbs(string(p))
	return ref
}

// Read returns the current content of a note.
func (v *Vault) Read(p schema.NotePath) (string, error) {
	abs, err := v.Abs(p)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if v.log != nil {
				v.log.Debug("vault read miss", "note", p)
			}
			return "", schema.ErrNoteNotFound
		}
		if v.log != nil {
			v.log.Warn("vault read failed", "note", p, "err", err)
		}
		return "", err
	}
	content := string(data)
	v.mu.Lock()
	v.cache[abs] = content
	v.mu.Unlock()
	return content, nil
}

// CachedRead returns cached note content, reading from disk on a miss.
func (v *Vault) CachedRead(p schema.NotePath) (string, error) {
	abs, err := v.Abs(p)
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	content, ok := v.cache[abs]
	v.mu.Unlock()
	if ok {
		return content, nil
	}
	return v.Read(p)
}

// Invalidate drops cached content for a filesystem path.
func (v *Vault) Invalidate(abs string) {
	v.mu.Lock()
	delete(v.cache, filepath.Clean(abs))
	v.mu.Unlock()
}

// Modify replaces the content of a note atomically.
func (v *Vault) Modify(p schema.NotePath, content string) error {
	abs, err := v.Abs(p)
	if err != nil {
		return err
	}
	if err := writeAtomic(abs, content); err != nil {
		if v.log != nil {
			v.log.Warn("vault modify failed", "note", p, "err", err)
		}
		return err
	}
	v.mu.Lock()
	v.cache[abs] = content
	v.mu.Unlock()
	if v.log != nil {
		v.log.Info("vault modify ok", "note", p, "bytes", len(content))
	}
	return nil
}

// Append inserts content after the existing note body, separated by a blank line.
func (v *Vault) Append(p schema.NotePath, content string) error {
	existing, err := v.Read(p)
	if err != nil {
		return err
	}
	return v.Modify(p, existing+"\n\n"+strings.TrimSpace(content)+"\n")
}

// MarkdownFiles lists every Markdown note in the vault, sorted by path.
// Hidden directories such as .git or .obsidian are skipped.
func (v *Vault) MarkdownFiles() ([]schema.NoteRef, error) {
	var refs []schema.NoteRef
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		if rel, ok := v.Rel(path); ok {
			refs = append(refs, schema.NewNoteRef(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// Search returns up to limit notes whose path contains filter, ignoring case.
func (v *Vault) Search(filter string, limit int) ([]schema.NoteRef, error) {
	refs, err := v.MarkdownFiles()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := make([]schema.NoteRef, 0, min(len(refs), max(limit, 0)))
	for _, ref := range refs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if needle == "" || strings.Contains(strings.ToLower(string(ref.Path)), needle) {
			out = append(out, ref)
		}
	}
	return out, nil
}

func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".nikiai-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
