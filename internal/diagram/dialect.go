package diagram

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect is one of the supported Mermaid diagram grammars.
type Dialect string

const (
	Mindmap   Dialect = "mindmap"
	Concept   Dialect = "concept"
	Flowchart Dialect = "flowchart"
	Sequence  Dialect = "sequence"
)

var ErrUnknownDialect = errors.New("unknown diagram dialect")

type grammar struct {
	instruction string
	exemplar    string
	prefixes    []string
}

var grammars = map[Dialect]grammar{
	Mindmap: {
		instruction: `Use Mermaid mindmap syntax. Start with "mindmap" and use proper indentation:`,
		exemplar: `mindmap
  root((Central Topic))
    Branch 1
      Sub-topic 1.1
      Sub-topic 1.2
    Branch 2`,
		prefixes: []string{"mindmap"},
	},
	Concept: {
		instruction: "Use Mermaid graph TD syntax for concept maps with labeled relationships:",
		exemplar: `graph TD
    A[Concept 1] -->|relationship| B[Concept 2]
    B -->|another relationship| C[Concept 3]`,
		prefixes: []string{"graph TD", "graph LR", "graph"},
	},
	Flowchart: {
		instruction: "Use Mermaid flowchart syntax:",
		exemplar: `flowchart TD
    Start([Start]) --> Process[Process Step]
    Process --> Decision{Decision?}
    Decision -->|Yes| End([End])
    Decision -->|No| Process`,
		prefixes: []string{"flowchart TD", "flowchart LR", "flowchart"},
	},
	Sequence: {
		instruction: "Use Mermaid sequence diagram syntax:",
		exemplar: `sequenceDiagram
    participant A
    participant B
    A->>B: Message
    B-->>A: Response`,
		prefixes: []string{"sequenceDiagram"},
	},
}

var aliases = map[string]Dialect{
	"mindmap":          Mindmap,
	"hierarchical-map": Mindmap,
	"concept":          Concept,
	"concept-graph":    Concept,
	"flowchart":        Flowchart,
	"sequence":         Sequence,
}

// Dialects lists the supported dialects in a stable order.
func Dialects() []Dialect {
	return []Dialect{Mindmap, Concept, Flowchart, Sequence}
}

// ParseDialect maps a wire token to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	d, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
	return d, nil
}

func (d Dialect) Valid() bool {
	_, ok := grammars[d]
	return ok
}

func (d Dialect) String() string { return string(d) }

// Exemplar returns a short syntax sample used in prompts.
func Exemplar(d Dialect) string {
	return grammars[d].exemplar
}

// Instruction returns the one-line syntax hint that precedes the exemplar.
func Instruction(d Dialect) string {
	return grammars[d].instruction
}

// AcceptedPrefixes returns the leading tokens a valid document may start with,
// in the order they are tried.
func AcceptedPrefixes(d Dialect) []string {
	p := grammars[d].prefixes
	out := make([]string, len(p))
	copy(out, p)
	return out
}
