package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/nikiai/schema"
	"pkt.systems/pslog"
)

// ConversationSnapshot captures a panel conversation for persistence.
type ConversationSnapshot struct {
	Vault       string           `json:"vault"`
	ActiveNote  schema.NotePath  `json:"active_note,omitempty"`
	IncludeNote bool             `json:"include_note,omitempty"`
	Mentions    []schema.NoteRef `json:"mentions,omitempty"`
	Messages    []schema.Message `json:"messages"`
	Inputs      []string         `json:"inputs,omitempty"`
}

// Store persists conversation snapshots to disk, one file per vault.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads the conversation for a vault from disk.
func (s *Store) Load(vault string) (ConversationSnapshot, bool, error) {
	path := s.pathForVault(vault)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("state load miss", "vault", vault)
			}
			return ConversationSnapshot{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("state load failed", "vault", vault, "err", err)
		}
		return ConversationSnapshot{}, false, err
	}
	var snapshot ConversationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "vault", vault, "err", err)
		}
		return ConversationSnapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("state load ok", "vault", vault, "messages", len(snapshot.Messages))
	}
	return snapshot, true, nil
}

// Save writes the conversation for a vault to disk.
func (s *Store) Save(vault string, snapshot ConversationSnapshot) error {
	path := s.pathForVault(vault)
	snapshot.Vault = vault
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return s.saveFailed(vault, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "state-*.json")
	if err != nil {
		return s.saveFailed(vault, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(vault, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(vault, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(vault, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(vault, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return s.saveFailed(vault, err)
	}
	if s.log != nil {
		s.log.Trace("state save ok", "vault", vault, "messages", len(snapshot.Messages))
	}
	return nil
}

// Delete removes the stored conversation for a vault.
func (s *Store) Delete(vault string) error {
	err := os.Remove(s.pathForVault(vault))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) saveFailed(vault string, err error) error {
	if s.log != nil {
		s.log.Warn("state save failed", "vault", vault, "err", err)
	}
	return err
}

func (s *Store) pathForVault(vault string) string {
	name := sanitize(filepath.Base(vault))
	if name == "" {
		name = "vault"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(vault))
	return filepath.Join(s.dir, fmt.Sprintf("%s-%08x.json", name, h.Sum32()))
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
