package schema

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizeNotePath cleans a vault-relative note path.
// The result uses forward slashes and never escapes the vault root.
func NormalizeNotePath(value string) (NotePath, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrInvalidNotePath
	}
	trimmed = filepath.ToSlash(trimmed)
	if strings.HasPrefix(trimmed, "/") {
		return "", ErrInvalidNotePath
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidNotePath
	}
	return NotePath(cleaned), nil
}

// Basename returns the note file name without its extension.
func (p NotePath) Basename() string {
	base := path.Base(filepath.ToSlash(string(p)))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// NewNoteRef builds a NoteRef for a vault-relative path.
func NewNoteRef(p NotePath) NoteRef {
	return NoteRef{Path: p, Basename: p.Basename()}
}
