package ai

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed chat_prompt.txt
var chatSystemPrompt string

//go:embed improve_prompt.txt
var improvePromptTemplate string

//go:embed analyze_prompt.txt
var analyzePromptTemplate string

// Message is one prior conversation turn supplied by the caller.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// buildChatPrompt assembles the full prompt sent to the model: system
// instructions, prior turns, the current document and the new message.
// Ollama's generate API takes a flat prompt, not structured messages.
func buildChatPrompt(userMessage, latexContent string, history []Message) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(chatSystemPrompt))
	b.WriteString("\n\n")

	for _, msg := range history {
		prefix := "User"
		if msg.Role == "assistant" {
			prefix = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", prefix, msg.Content)
	}

	fmt.Fprintf(&b, "Current LaTeX document:\n\n```latex\n%s\n```\n\n", latexContent)
	fmt.Fprintf(&b, "User: %s\n\nAssistant:", userMessage)
	return b.String()
}

func buildImprovePrompt(latexContent, improvementType, userMessage string, focusAreas []string) string {
	var extra strings.Builder
	if userMessage != "" {
		fmt.Fprintf(&extra, "User request: %s\n", userMessage)
	}
	if len(focusAreas) > 0 {
		fmt.Fprintf(&extra, "Focus areas: %s\n", strings.Join(focusAreas, ", "))
	}
	return fmt.Sprintf(improvePromptTemplate, latexContent, improvementType, extra.String())
}

func buildAnalyzePrompt(latexContent string) string {
	return fmt.Sprintf(analyzePromptTemplate, latexContent)
}
