package diagram

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	// Marker is the token the model is asked to put after node labels that
	// should receive an image.
	Marker = "[IMG]"

	imageSize   = 80
	childIndent = "  "
)

var reResidualMarker = regexp.MustCompile(`[ \t]*` + regexp.QuoteMeta(Marker))

// Image pairs an embedded-image payload (a data URL) with the topic label it
// belongs to.
type Image struct {
	Topic   string
	Payload string
}

// SizeKB approximates the decoded size of a base64 data URL payload.
func (i Image) SizeKB() float64 {
	data := i.Payload[strings.Index(i.Payload, ",")+1:]
	padding := 0
	switch {
	case strings.HasSuffix(data, "=="):
		padding = 2
	case strings.HasSuffix(data, "="):
		padding = 1
	}
	return (float64(len(data))*0.75 - float64(padding)) / 1024
}

// Phase tells which matching strategy placed images.
type Phase string

const (
	PhaseNone      Phase = "none"
	PhaseMarker    Phase = "marker"
	PhaseSubstring Phase = "substring"
)

// InjectReport describes the outcome of an injection run.
type InjectReport struct {
	Phase    Phase
	Injected int
}

type imageRule struct {
	topic   string
	marker  *regexp.Regexp
	element string
}

// InjectImages splices every image under the mind map line that carries its
// topic. Images that match nothing are dropped.
func InjectImages(text string, images []Image) string {
	out, _ := InjectImagesReport(text, images)
	return out
}

// InjectImagesReport is InjectImages that also reports which phase ran.
//
// Phase A replaces "<label> [IMG]" lines whose label equals an image topic
// (case-insensitive). Phase B runs only when Phase A changed nothing and
// attaches an image to every line containing a topic as a substring.
// Within a line, images are tried in the given order and the first match wins.
func InjectImagesReport(text string, images []Image) (string, InjectReport) {
	lines := strings.Split(text, "\n")

	rules := compileRules(images)
	if len(rules) == 0 {
		return strings.Join(stripMarkers(lines), "\n"), InjectReport{Phase: PhaseNone}
	}

	out, injected, changed := injectByMarker(lines, rules)
	phase := PhaseMarker
	if !changed {
		out, injected = injectBySubstring(lines, rules)
		phase = PhaseSubstring
	}
	if injected == 0 {
		phase = PhaseNone
	}

	return strings.Join(stripMarkers(out), "\n"), InjectReport{Phase: phase, Injected: injected}
}

// stripMarkers removes markers left on lines no image claimed.
func stripMarkers(lines []string) []string {
	for i, line := range lines {
		if strings.Contains(line, Marker) {
			lines[i] = reResidualMarker.ReplaceAllLiteralString(line, "")
		}
	}
	return lines
}

func compileRules(images []Image) []imageRule {
	rules := make([]imageRule, 0, len(images))
	for _, img := range images {
		topic := strings.TrimSpace(img.Topic)
		payload := strings.TrimSpace(img.Payload)
		if topic == "" || payload == "" {
			continue
		}
		pattern := `(?i)^([ \t]*)(` + regexp.QuoteMeta(topic) + `)[ \t]*` + regexp.QuoteMeta(Marker) + `[ \t]*$`
		rules = append(rules, imageRule{
			topic:   strings.ToLower(topic),
			marker:  regexp.MustCompile(pattern),
			element: imageElement(payload),
		})
	}
	return rules
}

func injectByMarker(lines []string, rules []imageRule) ([]string, int, bool) {
	out := make([]string, 0, len(lines)+len(rules))
	injected := 0
	for _, line := range lines {
		matched := false
		for _, r := range rules {
			m := r.marker.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			indent, label := m[1], m[2]
			out = append(out, indent+label, indent+childIndent+r.element)
			injected++
			matched = true
			break
		}
		if !matched {
			out = append(out, line)
		}
	}
	return out, injected, injected > 0
}

func injectBySubstring(lines []string, rules []imageRule) ([]string, int) {
	out := make([]string, 0, len(lines)+len(rules))
	injected := 0
	for i, line := range lines {
		out = append(out, line)
		content := strings.ToLower(strings.TrimSpace(line))
		if content == "" || (i == 0 && content == string(Mindmap)) {
			continue
		}
		for _, r := range rules {
			if strings.Contains(content, r.topic) {
				out = append(out, leadingIndent(line)+childIndent+r.element)
				injected++
				break
			}
		}
	}
	return out, injected
}

func imageElement(payload string) string {
	return fmt.Sprintf("<img src='%s' width='%d' height='%d' />", html.EscapeString(payload), imageSize, imageSize)
}

func leadingIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
