package diagram

import (
	"regexp"
	"strings"
)

var (
	reHintedFence = regexp.MustCompile("(?im)```[ \\t]*(?:mermaid|mindmap|graph|flowchart|sequenceDiagram|sequence|concept)[ \\t]*(?:\\n|$)")
	reBareFence   = regexp.MustCompile("```[ \\t]*\\n?")
	reBlankRun    = regexp.MustCompile(`\n\s*\n\s*\n`)
	reLineBreak   = regexp.MustCompile(`\r\n?`)
)

// Sanitize strips markdown fences the model may wrap around its output,
// trims the result and collapses repeated blank lines.
func Sanitize(raw string) string {
	// No carriage return survives, so fence removal cannot pair one with a newline.
	s := reLineBreak.ReplaceAllLiteralString(raw, "\n")
	s = reHintedFence.ReplaceAllLiteralString(s, "")
	s = reBareFence.ReplaceAllLiteralString(s, "")
	s = strings.TrimSpace(s)
	return reBlankRun.ReplaceAllLiteralString(s, "\n\n")
}
