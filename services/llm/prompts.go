package llm

import (
	"embed"
	"strings"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var (
	initialPrompt = mustPrompt("prompts/cot_initial.txt")
	refinePrompt  = mustPrompt("prompts/cot_refine.txt")
)

func mustPrompt(path string) string {
	data, err := promptFS.ReadFile(path)
	if err != nil {
		panic("llm: missing embedded prompt " + path)
	}
	return string(data)
}

// renderPrompt fills a prompt template. Placeholders follow the original
// prompt files: {history}, {question}, {reasoning}.
func renderPrompt(template, history, question, reasoning string) string {
	if history == "" {
		history = "No previous messages."
	}
	out := strings.ReplaceAll(template, "{history}", history)
	out = strings.ReplaceAll(out, "{question}", question)
	out = strings.ReplaceAll(out, "{reasoning}", reasoning)
	return out
}
