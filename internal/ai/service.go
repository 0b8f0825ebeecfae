package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/youruser/texai/internal/config"
	"github.com/youruser/texai/internal/llm"
	"github.com/youruser/texai/internal/logging"
	"github.com/youruser/texai/internal/patch"
)

var log = logging.Get()

// Generator is the slice of the model client the orchestrators need.
// *llm.Client satisfies it; tests use a stub.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts *llm.Options) (string, error)
	GenerateStream(ctx context.Context, model, prompt string, opts *llm.Options, callback llm.StreamCallback) error
}

// Service runs the chat, improve and analyze pipelines against a
// generation backend. It holds no per-request state.
type Service struct {
	gen Generator
	cfg *config.Config
}

func NewService(gen Generator, cfg *config.Config) *Service {
	return &Service{gen: gen, cfg: cfg}
}

func (s *Service) options() *llm.Options {
	return &llm.Options{
		Temperature: s.cfg.Temperature,
		NumPredict:  s.cfg.MaxTokens,
	}
}

// Chat sends one user message with the full document and returns the
// parsed reply: explanation, change list and, when edits were
// requested, the patched document.
func (s *Service) Chat(ctx context.Context, model, userMessage, latexContent string, history []Message) (*ChatResult, error) {
	prompt := buildChatPrompt(userMessage, latexContent, history)
	log.Prompt(model, prompt)
	log.Debug("chat prompt: ~%d tokens", llm.EstimateTokensSimple(prompt))

	raw, err := s.gen.Generate(ctx, model, prompt, s.options())
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	parsed := patch.Parse(raw)
	result := &ChatResult{
		Explanation: parsed.Explanation,
		Changes:     parsed.Changes,
	}
	if len(parsed.Changes) > 0 {
		result.ModifiedLatex = patch.Apply(latexContent, parsed.Changes)
	}
	return result, nil
}

// ChatStream streams a chat reply. Thinking and content chunks are
// forwarded as they arrive while content accumulates locally; at end
// of stream the accumulated text is parsed and, if it requested edits,
// a final changes chunk carries the change list and patched document.
// An upstream failure emits a terminal error chunk instead.
func (s *Service) ChatStream(ctx context.Context, model, userMessage, latexContent string, history []Message, emit func(StreamChunk)) error {
	prompt := buildChatPrompt(userMessage, latexContent, history)
	log.Prompt(model, prompt)

	var content strings.Builder
	err := s.gen.GenerateStream(ctx, model, prompt, s.options(), func(ev llm.StreamEvent) {
		switch ev.Type {
		case "thinking":
			log.Stream("thinking", ev.Thinking)
			emit(StreamChunk{Type: ChunkThinking, Content: ev.Thinking})
		case "content":
			log.Stream("content", ev.Content)
			content.WriteString(ev.Content)
			emit(StreamChunk{Type: ChunkContent, Content: ev.Content})
		}
	})
	if err != nil {
		emit(StreamChunk{Type: ChunkError, Error: err.Error()})
		return fmt.Errorf("chat stream: %w", err)
	}

	parsed := patch.Parse(content.String())
	if len(parsed.Changes) > 0 {
		emit(StreamChunk{
			Type:          ChunkChanges,
			Changes:       parsed.Changes,
			ModifiedLatex: patch.Apply(latexContent, parsed.Changes),
		})
	}
	return nil
}

// ImproveStream streams a document improvement. Content passes through
// the header stripper so boilerplate labels never reach the consumer;
// thinking chunks bypass it.
func (s *Service) ImproveStream(ctx context.Context, model, latexContent, improvementType, userMessage string, focusAreas []string, emit func(StreamChunk)) error {
	prompt := buildImprovePrompt(latexContent, improvementType, userMessage, focusAreas)
	log.Prompt(model, prompt)

	stripper := &headerStripper{}
	err := s.gen.GenerateStream(ctx, model, prompt, s.options(), func(ev llm.StreamEvent) {
		switch ev.Type {
		case "thinking":
			log.Stream("thinking", ev.Thinking)
			emit(StreamChunk{Type: ChunkThinking, Content: ev.Thinking})
		case "content":
			log.Stream("content", ev.Content)
			for _, out := range stripper.Feed(ev.Content) {
				emit(StreamChunk{Type: ChunkContent, Content: out})
			}
		}
	})
	if err != nil {
		emit(StreamChunk{Type: ChunkError, Error: err.Error()})
		return fmt.Errorf("improve stream: %w", err)
	}

	if rest := stripper.Flush(); rest != "" {
		emit(StreamChunk{Type: ChunkContent, Content: rest})
	}
	return nil
}

// Improve is the legacy non-streaming improve path: collect the whole
// stream, then pull the improved document out of the aggregate. The
// first fenced code block containing \documentclass wins; failing
// that, the whole aggregate counts only if \documentclass appears
// somewhere in it; otherwise the edit fails and the original document
// comes back unchanged.
func (s *Service) Improve(ctx context.Context, model, latexContent, improvementType, userMessage string, focusAreas []string) (*ImproveResult, error) {
	var aggregate strings.Builder
	err := s.ImproveStream(ctx, model, latexContent, improvementType, userMessage, focusAreas, func(c StreamChunk) {
		if c.Type == ChunkContent {
			aggregate.WriteString(c.Content)
		}
	})
	if err != nil {
		return nil, err
	}

	improved, ok := extractDocument(aggregate.String())
	if !ok {
		return &ImproveResult{
			ImprovedLatex: latexContent,
			Changes:       []patch.Change{},
			Explanation:   "Could not generate improvements. Document unchanged.",
		}, nil
	}
	return &ImproveResult{
		ImprovedLatex: improved,
		Changes:       []patch.Change{},
		Explanation:   summarizeChanges(latexContent, improved),
	}, nil
}

// Analyze asks the model for a structured document report. The reply
// is free text, so the first {...} span is decoded tolerantly; if no
// usable JSON comes back the analysis is empty rather than an error.
func (s *Service) Analyze(ctx context.Context, model, latexContent string) (*Analysis, error) {
	prompt := buildAnalyzePrompt(latexContent)
	log.Prompt(model, prompt)

	// lower temperature keeps the report shape stable
	opts := &llm.Options{Temperature: 0.3, NumPredict: s.cfg.MaxTokens}
	raw, err := s.gen.Generate(ctx, model, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return emptyAnalysis(), nil
	}
	analysis := emptyAnalysis()
	if err := json.Unmarshal([]byte(match), analysis); err != nil {
		log.Debug("analyze: discarding unparseable report: %v", err)
		return emptyAnalysis(), nil
	}
	return analysis, nil
}

var (
	jsonObjectRe  = regexp.MustCompile(`(?s)\{.*\}`)
	fencedBlockRe = regexp.MustCompile("(?s)```(?:latex)?\\s*\\n?(.*?)\\n?```")
)

func extractDocument(text string) (string, bool) {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(text, -1) {
		if strings.Contains(m[1], `\documentclass`) {
			return strings.TrimSpace(m[1]), true
		}
	}
	if strings.Contains(text, `\documentclass`) {
		return strings.TrimSpace(text), true
	}
	return "", false
}

// summarizeChanges produces a rough line-level summary of what the
// improvement touched.
func summarizeChanges(original, modified string) string {
	origLines := make(map[string]bool)
	for _, line := range strings.Split(original, "\n") {
		origLines[line] = true
	}
	modLines := make(map[string]bool)
	for _, line := range strings.Split(modified, "\n") {
		modLines[line] = true
	}

	added, removed := 0, 0
	for line := range modLines {
		if !origLines[line] {
			added++
		}
	}
	for line := range origLines {
		if !modLines[line] {
			removed++
		}
	}

	if added == 0 && removed == 0 {
		return "No significant changes detected."
	}
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("%d lines added", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d lines removed", removed))
	}
	return fmt.Sprintf("Changes: %s.", strings.Join(parts, ", "))
}
