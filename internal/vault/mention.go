package vault

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"pkt.systems/nikiai/schema"
)

const obsidianOpenPrefix = "obsidian://open?"

// ResolveMention turns a dropped or typed reference into a note.
// Accepted forms are vault-relative paths, absolute paths and
// obsidian://open?vault=...&file=... URIs. References that match no vault
// note but name an existing file, or come from a URI, resolve to an external note.
func (v *Vault) ResolveMention(ref string) (schema.NoteRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return schema.NoteRef{}, schema.ErrNoteNotFound
	}
	if strings.HasPrefix(ref, obsidianOpenPrefix) {
		return v.resolveURI(ref)
	}

	if filepath.IsAbs(ref) {
		if rel, ok := v.Rel(filepath.Clean(ref)); ok {
			if _, err := os.Stat(ref); err == nil {
				return schema.NewNoteRef(rel), nil
			}
		}
	} else if p, err := schema.NormalizeNotePath(ref); err == nil {
		if abs, err := v.Abs(p); err == nil {
			if info, err := os.Stat(abs); err == nil && !info.IsDir() {
				return schema.NewNoteRef(p), nil
			}
		}
	}

	if match, ok, err := v.match(filepath.ToSlash(ref)); err != nil {
		return schema.NoteRef{}, err
	} else if ok {
		return match, nil
	}

	if filepath.IsAbs(ref) {
		if info, err := os.Stat(ref); err == nil && !info.IsDir() {
			return v.Ref(schema.NotePath(filepath.Clean(ref))), nil
		}
	}
	return schema.NoteRef{}, fmt.Errorf("%w: %s", schema.ErrNoteNotFound, ref)
}

func (v *Vault) resolveURI(raw string) (schema.NoteRef, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return schema.NoteRef{}, fmt.Errorf("parse note uri: %w", err)
	}
	file := parsed.Query().Get("file")
	if file == "" {
		return schema.NoteRef{}, fmt.Errorf("%w: uri has no file parameter", schema.ErrNoteNotFound)
	}
	if decoded, err := url.PathUnescape(file); err == nil {
		file = decoded
	}
	if match, ok, err := v.match(file); err != nil {
		return schema.NoteRef{}, err
	} else if ok {
		return match, nil
	}
	name := path.Base(file)
	return schema.NoteRef{
		Path:     schema.NotePath(file),
		Basename: strings.TrimSuffix(name, ".md"),
		External: true,
	}, nil
}

// match finds a vault note by exact path, path suffix or basename.
func (v *Vault) match(target string) (schema.NoteRef, bool, error) {
	refs, err := v.MarkdownFiles()
	if err != nil {
		return schema.NoteRef{}, false, err
	}
	withExt := target
	if !strings.EqualFold(path.Ext(target), ".md") {
		withExt = target + ".md"
	}
	name := strings.TrimSuffix(path.Base(target), path.Ext(target))
	for _, ref := range refs {
		p := string(ref.Path)
		if p == target || p == withExt {
			return ref, true, nil
		}
	}
	for _, ref := range refs {
		p := string(ref.Path)
		if strings.HasSuffix(p, "/"+strings.TrimPrefix(withExt, "/")) || strings.HasSuffix(target, "/"+p) {
			return ref, true, nil
		}
	}
	for _, ref := range refs {
		if ref.Basename == name {
			return ref, true, nil
		}
	}
	return schema.NoteRef{}, false, nil
}
