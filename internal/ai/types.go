package ai

import "github.com/youruser/texai/internal/patch"

// StreamChunk is one tagged event forwarded to a streaming consumer.
// A session is any number of thinking/content chunks followed by at
// most one changes or error chunk.
type StreamChunk struct {
	Type          string         `json:"type"`
	Content       string         `json:"content,omitempty"`
	Changes       []patch.Change `json:"changes,omitempty"`
	ModifiedLatex string         `json:"modified_latex,omitempty"`
	Error         string         `json:"error,omitempty"`
}

const (
	ChunkThinking = "thinking"
	ChunkContent  = "content"
	ChunkChanges  = "changes"
	ChunkError    = "error"
)

// ChatResult is the outcome of a batch chat call. ModifiedLatex is
// empty when the reply requested no edits.
type ChatResult struct {
	Explanation   string         `json:"message"`
	Changes       []patch.Change `json:"changes"`
	ModifiedLatex string         `json:"modified_latex,omitempty"`
}

// ImproveResult is the outcome of a legacy non-streaming improve call.
type ImproveResult struct {
	ImprovedLatex string         `json:"improved_latex"`
	Changes       []patch.Change `json:"changes"`
	Explanation   string         `json:"explanation"`
}

// Analysis is the model-produced document report. The nested shapes
// come from the model, so they stay loosely typed.
type Analysis struct {
	Errors      []map[string]any `json:"errors"`
	Warnings    []map[string]any `json:"warnings"`
	Suggestions []string         `json:"suggestions"`
	Structure   map[string]any   `json:"structure"`
	Statistics  map[string]any   `json:"statistics"`
}

func emptyAnalysis() *Analysis {
	return &Analysis{
		Errors:      []map[string]any{},
		Warnings:    []map[string]any{},
		Suggestions: []string{},
		Structure:   map[string]any{},
		Statistics:  map[string]any{},
	}
}
