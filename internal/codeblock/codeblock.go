// Package codeblock extracts fenced code blocks from assistant replies.
package codeblock

import (
	"regexp"
	"strings"

	"pkt.systems/nikiai/schema"
)

var fence = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// Block is a fenced code block found in a reply.
type Block struct {
	Language string
	Content  string
}

// Extract returns the fenced blocks of text in order.
func Extract(text string) []Block {
	matches := fence.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]Block, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, Block{Language: match[1], Content: match[2]})
	}
	return blocks
}

// Changes turns every fenced block in reply into a proposed replacement of note.
func Changes(reply string, note schema.NotePath, original string) []schema.CodeChange {
	blocks := Extract(reply)
	if len(blocks) == 0 {
		return nil
	}
	changes := make([]schema.CodeChange, 0, len(blocks))
	for i, block := range blocks {
		changes = append(changes, schema.CodeChange{
			Language:        block.Language,
			Note:            note,
			OriginalContent: original,
			NewContent:      strings.TrimSpace(block.Content),
			BlockIndex:      i,
		})
	}
	return changes
}
