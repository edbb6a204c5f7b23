package service

const (
	promptIntro = "You are a diagram expert. Create a Mermaid diagram based on the following information:"

	topicLine       = "Topic: %s"
	descriptionLine = "Description: %s"
	dialectLine     = "Diagram Type: %s"

	imageTopicsIntro = "The user has provided images for these topics:"
	imageMarkerRule  = `For every node whose label matches one of the topics above, write the label followed by a space and the literal marker %s, for example "    %s %s". Do not add %s to any other node.`

	rulesIntro = "IMPORTANT RULES:"
	promptTail = "Generate the Mermaid diagram now:"
)

var promptRules = []string{
	"Return ONLY the Mermaid code, no explanations or prose",
	"Do not wrap the code in ```mermaid or any other formatting",
	"Ensure the syntax is valid Mermaid %s syntax",
	"Keep it clear, well-structured, and easy to understand",
	"For mind maps, use proper indentation (2 spaces per level)",
	"Make sure all connections and relationships make logical sense",
}
