package prompt

import (
	"errors"
	"testing"

	"pkt.systems/nikiai/schema"
)

func TestBuildFullPrompt(t *testing.T) {
	got := Build(Input{
		System: "  be brief  ",
		Mentions: []NoteContent{
			{Path: "ideas.md", Content: "idea body"},
			{Path: "broken.md", Err: errors.New("denied")},
		},
		Current: &NoteContent{Path: "today.md", Content: "today body"},
		History: []schema.Message{
			{Role: schema.RoleSystem, Content: "hidden"},
			{Role: schema.RoleUser, Content: "hi"},
			{Role: schema.RoleAssistant, Content: "hello"},
		},
		User: "summarise",
	})
	want := "[System]\nbe brief\n\n" +
		"[@ ideas.md]\nidea body\n\n" +
		"[@ broken.md]\n(unable to read file)\n\n" +
		"[@ Current note: today.md]\ntoday body\n\n" +
		"[Conversation]\nUSER: hi\n\nASSISTANT: hello\n\n" +
		"[User]\nsummarise"
	if got != want {
		t.Fatalf("unexpected prompt:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestBuildMinimalPrompt(t *testing.T) {
	if got := Build(Input{System: "   ", User: "hello"}); got != "[User]\nhello" {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestBuildSkipsCurrentNoteWhenMentioned(t *testing.T) {
	got := Build(Input{
		Mentions: []NoteContent{{Path: "today.md", Content: "body"}},
		Current:  &NoteContent{Path: "today.md", Content: "body"},
		User:     "x",
	})
	want := "[@ today.md]\nbody\n\n[User]\nx"
	if got != want {
		t.Fatalf("unexpected prompt:\nwant: %q\ngot:  %q", want, got)
	}
}

func TestDisplayText(t *testing.T) {
	if got := DisplayText("plain", nil); got != "plain" {
		t.Fatalf("unexpected display %q", got)
	}
	refs := []schema.NoteRef{{Path: "a/one.md", Basename: "one"}, {Path: "two.md", Basename: "two"}}
	if got := DisplayText("question", refs); got != "@one, @two\n\nquestion" {
		t.Fatalf("unexpected display %q", got)
	}
}
