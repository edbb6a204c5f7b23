package service

import (
	"fmt"
	"strings"

	"github.com/kdduha/mermaid-mapgen/internal/diagram"
	"github.com/kdduha/mermaid-mapgen/internal/models"
)

// BuildPrompt composes the instruction sent to the model. It is a pure
// function of the request.
func BuildPrompt(d models.Diagram) string {
	var b strings.Builder

	b.WriteString(promptIntro)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, topicLine, d.Topic)
	b.WriteString("\n")
	if d.Description != "" {
		fmt.Fprintf(&b, descriptionLine, d.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, dialectLine, d.Dialect)
	b.WriteString("\n\n")

	b.WriteString(diagram.Instruction(d.Dialect))
	b.WriteString("\n")
	b.WriteString(diagram.Exemplar(d.Dialect))
	b.WriteString("\n\n")

	if d.Dialect == diagram.Mindmap && len(d.Images) > 0 {
		b.WriteString(imageTopicsIntro)
		b.WriteString("\n")
		for _, img := range d.Images {
			fmt.Fprintf(&b, "- %s\n", img.Topic)
		}
		fmt.Fprintf(&b, imageMarkerRule, diagram.Marker, d.Images[0].Topic, diagram.Marker, diagram.Marker)
		b.WriteString("\n\n")
	}

	b.WriteString(rulesIntro)
	b.WriteString("\n")
	for i, rule := range promptRules {
		if strings.Contains(rule, "%s") {
			rule = fmt.Sprintf(rule, d.Dialect)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\n")
	b.WriteString(promptTail)

	return b.String()
}
