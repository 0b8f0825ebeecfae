package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/youruser/texai/internal/config"
	"github.com/youruser/texai/internal/llm"
)

type stubGenerator struct {
	response   string
	events     []llm.StreamEvent
	err        error
	lastPrompt string
}

func (g *stubGenerator) Generate(ctx context.Context, model, prompt string, opts *llm.Options) (string, error) {
	g.lastPrompt = prompt
	return g.response, g.err
}

func (g *stubGenerator) GenerateStream(ctx context.Context, model, prompt string, opts *llm.Options, callback llm.StreamCallback) error {
	g.lastPrompt = prompt
	for _, ev := range g.events {
		callback(ev)
	}
	return g.err
}

func testConfig() *config.Config {
	return &config.Config{
		OllamaModel: "gemma3:4b",
		Temperature: 0.7,
		MaxTokens:   4000,
	}
}

func collect(chunks *[]StreamChunk) func(StreamChunk) {
	return func(c StreamChunk) { *chunks = append(*chunks, c) }
}

func TestChat_AppliesChanges(t *testing.T) {
	gen := &stubGenerator{
		response: "I removed the typo.\n```json\n{\"changes\":[{\"type\":\"delete\",\"search\":\"foo\"}]}\n```",
	}
	svc := NewService(gen, testConfig())

	res, err := svc.Chat(context.Background(), "gemma3:4b", "remove foo", "foobar", nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Explanation != "I removed the typo." {
		t.Errorf("got explanation %q", res.Explanation)
	}
	if len(res.Changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(res.Changes))
	}
	if res.ModifiedLatex != "bar" {
		t.Errorf("got %q, want %q", res.ModifiedLatex, "bar")
	}
}

func TestChat_PlainAnswer(t *testing.T) {
	gen := &stubGenerator{response: "A preamble is everything before \\begin{document}."}
	svc := NewService(gen, testConfig())

	res, err := svc.Chat(context.Background(), "gemma3:4b", "what is a preamble?", "doc", nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Explanation != gen.response {
		t.Errorf("got explanation %q, want full reply", res.Explanation)
	}
	if len(res.Changes) != 0 || res.ModifiedLatex != "" {
		t.Errorf("expected no changes, got %v / %q", res.Changes, res.ModifiedLatex)
	}
}

func TestChat_PromptCarriesDocumentAndHistory(t *testing.T) {
	gen := &stubGenerator{response: "ok"}
	svc := NewService(gen, testConfig())

	history := []Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	if _, err := svc.Chat(context.Background(), "m", "new question", "\\documentclass{article}", history); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	for _, want := range []string{"\\documentclass{article}", "User: earlier question", "Assistant: earlier answer", "User: new question"} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChat_GenerationFailure(t *testing.T) {
	genErr := errors.New("connection refused")
	gen := &stubGenerator{err: genErr}
	svc := NewService(gen, testConfig())

	if _, err := svc.Chat(context.Background(), "m", "hi", "doc", nil); !errors.Is(err, genErr) {
		t.Errorf("got %v, want wrapped generation error", err)
	}
}

func TestChatStream_EmitsChangesChunk(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "thinking", Thinking: "let me see"},
		{Type: "content", Content: "Done.\n```json\n{\"changes\":"},
		{Type: "content", Content: "[{\"type\":\"replace\",\"search\":\"a\",\"replace\":\"b\"}]}\n```"},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	var chunks []StreamChunk
	if err := svc.ChatStream(context.Background(), "m", "swap", "abc", nil, collect(&chunks)); err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	if chunks[0].Type != ChunkThinking || chunks[0].Content != "let me see" {
		t.Errorf("got first chunk %+v, want thinking", chunks[0])
	}
	if chunks[1].Type != ChunkContent || chunks[2].Type != ChunkContent {
		t.Errorf("expected content chunks in order, got %+v %+v", chunks[1], chunks[2])
	}
	last := chunks[len(chunks)-1]
	if last.Type != ChunkChanges {
		t.Fatalf("got final chunk %+v, want changes", last)
	}
	if last.ModifiedLatex != "bbc" {
		t.Errorf("got modified latex %q, want %q", last.ModifiedLatex, "bbc")
	}
	if len(last.Changes) != 1 || last.Changes[0].Search != "a" {
		t.Errorf("got changes %+v", last.Changes)
	}
}

func TestChatStream_NoChangesNoFinalChunk(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "content", Content: "just an answer"},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	var chunks []StreamChunk
	if err := svc.ChatStream(context.Background(), "m", "q", "doc", nil, collect(&chunks)); err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	for _, c := range chunks {
		if c.Type == ChunkChanges {
			t.Errorf("unexpected changes chunk %+v", c)
		}
	}
}

func TestChatStream_UpstreamErrorEmitsErrorChunk(t *testing.T) {
	genErr := errors.New("model crashed")
	gen := &stubGenerator{
		events: []llm.StreamEvent{{Type: "content", Content: "partial"}},
		err:    genErr,
	}
	svc := NewService(gen, testConfig())

	var chunks []StreamChunk
	err := svc.ChatStream(context.Background(), "m", "q", "doc", nil, collect(&chunks))
	if !errors.Is(err, genErr) {
		t.Fatalf("got %v, want wrapped upstream error", err)
	}
	last := chunks[len(chunks)-1]
	if last.Type != ChunkError || last.Error != "model crashed" {
		t.Errorf("got final chunk %+v, want error chunk", last)
	}
}

func TestImproveStream_StripsHeader(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "content", Content: "**Explanation:** "},
		{Type: "content", Content: "\\documentclass{article}\n"},
		{Type: "content", Content: "\\begin{document}hi\\end{document}"},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	var chunks []StreamChunk
	if err := svc.ImproveStream(context.Background(), "m", "doc", "all", "", nil, collect(&chunks)); err != nil {
		t.Fatalf("ImproveStream: %v", err)
	}

	var content strings.Builder
	for _, c := range chunks {
		if c.Type == ChunkContent {
			content.WriteString(c.Content)
		}
	}
	want := "\\documentclass{article}\n\\begin{document}hi\\end{document}"
	if content.String() != want {
		t.Errorf("got %q, want header stripped", content.String())
	}
}

func TestImproveStream_ThinkingBypassesStripper(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "thinking", Thinking: "plan"},
		{Type: "content", Content: "short"},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	var chunks []StreamChunk
	if err := svc.ImproveStream(context.Background(), "m", "doc", "all", "", nil, collect(&chunks)); err != nil {
		t.Fatalf("ImproveStream: %v", err)
	}
	if chunks[0].Type != ChunkThinking || chunks[0].Content != "plan" {
		t.Errorf("got first chunk %+v, want thinking forwarded immediately", chunks[0])
	}
	last := chunks[len(chunks)-1]
	if last.Type != ChunkContent || last.Content != "short" {
		t.Errorf("got final chunk %+v, want flushed buffer", last)
	}
}

func TestImprove_FencedDocument(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "content", Content: "Here you go:\n```latex\n\\documentclass{article}\n\\begin{document}new\\end{document}\n```\nEnjoy."},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	res, err := svc.Improve(context.Background(), "m", "old doc", "writing", "", nil)
	if err != nil {
		t.Fatalf("Improve: %v", err)
	}
	want := "\\documentclass{article}\n\\begin{document}new\\end{document}"
	if res.ImprovedLatex != want {
		t.Errorf("got %q, want fenced block contents", res.ImprovedLatex)
	}
	if !strings.HasPrefix(res.Explanation, "Changes:") {
		t.Errorf("got explanation %q, want change summary", res.Explanation)
	}
}

func TestImprove_MarkerAnywhereFallback(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "content", Content: "\\documentclass{article}\n\\begin{document}improved\\end{document}"},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	res, err := svc.Improve(context.Background(), "m", "old", "all", "", nil)
	if err != nil {
		t.Fatalf("Improve: %v", err)
	}
	if !strings.Contains(res.ImprovedLatex, "improved") {
		t.Errorf("got %q, want whole aggregate as artifact", res.ImprovedLatex)
	}
}

func TestImprove_NoMarkerFails(t *testing.T) {
	gen := &stubGenerator{events: []llm.StreamEvent{
		{Type: "content", Content: "Sorry, I cannot help with that."},
		{Type: "done"},
	}}
	svc := NewService(gen, testConfig())

	res, err := svc.Improve(context.Background(), "m", "original doc", "all", "", nil)
	if err != nil {
		t.Fatalf("Improve: %v", err)
	}
	if res.ImprovedLatex != "original doc" {
		t.Errorf("got %q, want original document unchanged", res.ImprovedLatex)
	}
	if res.Explanation != "Could not generate improvements. Document unchanged." {
		t.Errorf("got explanation %q", res.Explanation)
	}
}

func TestAnalyze_ExtractsReport(t *testing.T) {
	gen := &stubGenerator{response: "Here is the analysis:\n{\"errors\":[{\"line\":3,\"message\":\"missing brace\",\"severity\":\"error\"}],\"warnings\":[],\"suggestions\":[\"use siunitx\"],\"structure\":{\"equations\":2},\"statistics\":{\"words\":120}}"}
	svc := NewService(gen, testConfig())

	analysis, err := svc.Analyze(context.Background(), "m", "doc")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Errors) != 1 || analysis.Errors[0]["message"] != "missing brace" {
		t.Errorf("got errors %v", analysis.Errors)
	}
	if len(analysis.Suggestions) != 1 || analysis.Suggestions[0] != "use siunitx" {
		t.Errorf("got suggestions %v", analysis.Suggestions)
	}
}

func TestAnalyze_GarbageDegradesToEmpty(t *testing.T) {
	for name, reply := range map[string]string{
		"no json":     "The document looks fine to me.",
		"broken json": "{\"errors\": [unclosed",
	} {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{response: reply}
			svc := NewService(gen, testConfig())

			analysis, err := svc.Analyze(context.Background(), "m", "doc")
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if len(analysis.Errors) != 0 || len(analysis.Suggestions) != 0 {
				t.Errorf("got %+v, want empty analysis", analysis)
			}
		})
	}
}
