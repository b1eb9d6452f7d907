package persist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"pkt.systems/nikiai/schema"
)

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := store.Load("/vaults/notes")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected missing snapshot")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snapshot := ConversationSnapshot{
		ActiveNote:  "daily/today.md",
		IncludeNote: true,
		Mentions:    []schema.NoteRef{{Path: "ideas.md", Basename: "ideas"}},
		Messages: []schema.Message{
			{ID: "m1", Role: schema.RoleUser, Content: "hi", CreatedAt: created},
			{
				ID:        "m2",
				Role:      schema.RoleAssistant,
				Content:   "```md\nnew\n```",
				CreatedAt: created,
				CodeChanges: []schema.CodeChange{
					{Language: "md", Note: "daily/today.md", OriginalContent: "old", NewContent: "new", Applied: true},
				},
				ChangesParsed: true,
			},
		},
	}
	if err := store.Save("/vaults/notes", snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, err := store.Load("/vaults/notes")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	snapshot.Vault = "/vaults/notes"
	if !reflect.DeepEqual(loaded, snapshot) {
		t.Fatalf("round trip mismatch:\nwant: %+v\ngot:  %+v", snapshot, loaded)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "notes-*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one state file, got %v (%v)", matches, err)
	}
	info, err := os.Stat(matches[0])
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 state file, got %v", info.Mode().Perm())
	}
}

func TestStoreSeparatesVaults(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("/a/notes", ConversationSnapshot{Messages: []schema.Message{{ID: "a"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save("/b/notes", ConversationSnapshot{Messages: []schema.Message{{ID: "b"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	a, _, _ := store.Load("/a/notes")
	b, _, _ := store.Load("/b/notes")
	if a.Messages[0].ID != "a" || b.Messages[0].ID != "b" {
		t.Fatalf("vaults with the same basename must not collide")
	}
	if err := store.Delete("/a/notes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load("/a/notes"); ok {
		t.Fatalf("expected snapshot to be deleted")
	}
	if err := store.Delete("/a/notes"); err != nil {
		t.Fatalf("deleting twice should be a no-op: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("my vault/ä"); got != "my_vault_ä" {
		t.Fatalf("sanitize = %q", got)
	}
}
