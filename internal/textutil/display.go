// Package textutil prepares file names and matched lines for terminal output.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTabWidth is the tab stop used when expanding tabs.
const DefaultTabWidth = 4

// Ellipsis marks text shortened by Clip.
const Ellipsis = "…"

var formattingRuneLabels = map[rune]string{
	0x061C: "⟪ALM⟫",
	0x200B: "⟪ZWSP⟫",
	0x200C: "⟪ZWNJ⟫",
	0x200D: "⟪ZWJ⟫",
	0x200E: "⟪LRM⟫",
	0x200F: "⟪RLM⟫",
	0x202A: "⟪LRE⟫",
	0x202B: "⟪RLE⟫",
	0x202C: "⟪PDF⟫",
	0x202D: "⟪LRO⟫",
	0x202E: "⟪RLO⟫",
	0x2028: "⟪LSEP⟫",
	0x2029: "⟪PSEP⟫",
	0x00AD: "⟪SHY⟫",
	0x2060: "⟪WJ⟫",
	0x2066: "⟪LRI⟫",
	0x2067: "⟪RLI⟫",
	0x2068: "⟪FSI⟫",
	0x2069: "⟪PDI⟫",
	0xFEFF: "⟪BOM⟫",
}

// Sanitize makes text safe to print: tabs are expanded, other control
// characters become '?' and bidi/zero-width runes are labelled. Text that
// needs no change is returned as is.
func Sanitize(text string) string {
	clean := true
	for _, r := range text {
		if needsRewrite(r) {
			clean = false
			break
		}
	}
	if clean {
		return text
	}

	var b strings.Builder
	column := 0
	for _, r := range text {
		switch {
		case r == '\t':
			spaces := DefaultTabWidth - column%DefaultTabWidth
			b.WriteString(strings.Repeat(" ", spaces))
			column += spaces
			continue
		case isFormattingRune(r):
			b.WriteString(formattingRuneLabels[r])
		case r < 0x20 || r == 0x7f:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
		column += max(runewidth.RuneWidth(r), 1)
	}
	return b.String()
}

func needsRewrite(r rune) bool {
	return r < 0x20 || r == 0x7f || isFormattingRune(r)
}

func isFormattingRune(r rune) bool {
	_, ok := formattingRuneLabels[r]
	return ok
}

// DisplayWidth reports the number of terminal cells text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Clip shortens text to at most width cells, marking the cut with an
// ellipsis. A width <= 0 disables clipping.
func Clip(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.Truncate(text, width, Ellipsis)
}

// Emphasize wraps text[start:end] in on/off markers, sanitizing each segment
// separately so the byte offsets stay valid. Out-of-range offsets fall back
// to sanitizing the whole line.
func Emphasize(text string, start, end int, on, off string) string {
	if start < 0 || end > len(text) || start >= end {
		return Sanitize(text)
	}
	return Sanitize(text[:start]) + on + Sanitize(text[start:end]) + off + Sanitize(text[end:])
}
