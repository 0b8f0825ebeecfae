package llm

// Request/response types for the Ollama HTTP API.

// Options are the generation options forwarded to Ollama.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // max tokens to generate
}

type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// GenerateResponse is one /api/generate payload: the full response in
// non-streaming mode, or a single chunk when streaming (one JSON object
// per line).
type GenerateResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	Thinking   string `json:"thinking,omitempty"` // reasoning trace, when the model emits one
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason,omitempty"`

	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
	TotalDuration   int64 `json:"total_duration,omitempty"`

	Error string `json:"error,omitempty"`
}

// ModelInfo describes one locally installed model, from /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
	Digest     string `json:"digest"`
}

type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}

// StreamEvent represents a parsed event from the generate stream.
type StreamEvent struct {
	Type     string // "content", "thinking", "done", "error"
	Content  string // for "content" events
	Thinking string // for "thinking" events
	Error    string // for "error" events
}
