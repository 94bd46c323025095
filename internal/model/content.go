package model

import (
	"fmt"
	"strings"
)

// BlockKind identifies the type of a content block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockListItem  BlockKind = "list_item"
	BlockQuote     BlockKind = "quote"
)

// Block is one typed unit of a document body.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Text  string    `json:"text"`
	Level int       `json:"level,omitempty"` // heading depth, 1-6
}

// Content is the structured body of a document: an ordered sequence of blocks.
type Content struct {
	Blocks []Block `json:"blocks"`
}

// Validate checks that every block carries a known kind and a sane heading level.
func (c Content) Validate() error {
	for i, b := range c.Blocks {
		switch b.Kind {
		case BlockHeading, BlockParagraph, BlockListItem, BlockQuote:
		default:
			return fmt.Errorf("block %d: unknown kind %q", i, b.Kind)
		}
		if b.Kind == BlockHeading && (b.Level < 0 || b.Level > 6) {
			return fmt.Errorf("block %d: heading level %d out of range", i, b.Level)
		}
	}
	return nil
}

// FlattenToLines converts content into an ordered sequence of plain-text lines.
// The mapping is deterministic: identical content always flattens identically,
// which is what makes line diffing and word counting reliable.
func (c Content) FlattenToLines() []string {
	var lines []string
	for _, b := range c.Blocks {
		prefix := ""
		switch b.Kind {
		case BlockHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			prefix = strings.Repeat("#", level) + " "
		case BlockListItem:
			prefix = "- "
		case BlockQuote:
			prefix = "> "
		}
		for _, line := range strings.Split(b.Text, "\n") {
			lines = append(lines, prefix+line)
		}
	}
	return lines
}

// WordCount returns the number of whitespace-delimited tokens across all
// block text. Counting runs over the raw text, not the flattened lines, so
// rendering prefixes like "##" or "-" never count as words.
func (c Content) WordCount() int {
	count := 0
	for _, b := range c.Blocks {
		count += len(strings.Fields(b.Text))
	}
	return count
}
