package codeblock

import (
	"testing"

	"pkt.systems/nikiai/schema"
)

func TestExtract(t *testing.T) {
	reply := "Here you go:\n\n```markdown\n# Title\n\nBody\n```\n\nand a second one\n```\nplain\n```\ntrailing ``` unterminated"
	blocks := Extract(reply)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Language != "markdown" || blocks[0].Content != "# Title\n\nBody\n" {
		t.Fatalf("unexpected first block %+v", blocks[0])
	}
	if blocks[1].Language != "" || blocks[1].Content != "plain\n" {
		t.Fatalf("unexpected second block %+v", blocks[1])
	}
}

func TestExtractRequiresNewlineAfterFence(t *testing.T) {
	if blocks := Extract("inline ```code``` only"); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %+v", blocks)
	}
	if blocks := Extract("```go-lang\nx\n```"); len(blocks) != 0 {
		t.Fatalf("language tags are word characters only, got %+v", blocks)
	}
}

func TestChanges(t *testing.T) {
	changes := Changes("```md\n  new text  \n```\n```\nsecond\n```", "note.md", "old text")
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	want := schema.CodeChange{Language: "md", Note: "note.md", OriginalContent: "old text", NewContent: "new text", BlockIndex: 0}
	if changes[0] != want {
		t.Fatalf("unexpected change %+v", changes[0])
	}
	if changes[1].BlockIndex != 1 || changes[1].NewContent != "second" {
		t.Fatalf("unexpected second change %+v", changes[1])
	}
	if Changes("no code here", "note.md", "x") != nil {
		t.Fatalf("expected nil changes without blocks")
	}
}
