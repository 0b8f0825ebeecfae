package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/youruser/texai/internal/logging"
)

var (
	ErrRequestFailed = errors.New("ollama request failed")
	ErrStreamError   = errors.New("stream error")
	ErrNotRunning    = errors.New("ollama is not reachable")
	log              = logging.Get()
)

// Client handles communication with a local Ollama server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Ollama client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// CheckRunning verifies that the Ollama server answers at all.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrNotRunning, resp.StatusCode)
	}
	return nil
}

// Generate sends a non-streaming generate request and returns the full
// response text.
func (c *Client) Generate(ctx context.Context, model, prompt string, opts *Options) (string, error) {
	reqBody := GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: opts,
	}

	resp, err := c.postGenerate(ctx, reqBody)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, result.Error)
	}

	log.Debug("Generate done (model: %s, eval: %d tokens)", model, result.EvalCount)
	return result.Response, nil
}

// StreamCallback is called for each event in the generate stream.
type StreamCallback func(event StreamEvent)

// GenerateStream sends a streaming generate request. Ollama streams one
// JSON object per line; the callback receives content and thinking
// events as they arrive and a final "done" event. Malformed lines are
// skipped rather than aborting the stream.
func (c *Client) GenerateStream(ctx context.Context, model, prompt string, opts *Options, callback StreamCallback) error {
	reqBody := GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  true,
		Options: opts,
	}

	resp, err := c.postGenerate(ctx, reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.processStream(ctx, resp.Body, callback)
}

func (c *Client) postGenerate(ctx context.Context, reqBody GenerateRequest) (*http.Response, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug("HTTP POST %s/api/generate (model: %s, prompt: %d bytes, stream: %v)",
		c.baseURL, reqBody.Model, len(reqBody.Prompt), reqBody.Stream)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Error("Ollama error %d: %s", resp.StatusCode, string(body))

		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrRequestFailed, apiErr.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	return resp, nil
}

// processStream reads newline-delimited JSON chunks and calls the
// callback for each.
func (c *Client) processStream(ctx context.Context, reader io.Reader, callback StreamCallback) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	log.Debug("Starting generate stream processing")

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk GenerateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue // skip malformed lines
		}

		if chunk.Error != "" {
			callback(StreamEvent{Type: "error", Error: chunk.Error})
			return fmt.Errorf("%w: %s", ErrStreamError, chunk.Error)
		}

		if chunk.Thinking != "" {
			callback(StreamEvent{Type: "thinking", Thinking: chunk.Thinking})
		}
		if chunk.Response != "" {
			callback(StreamEvent{Type: "content", Content: chunk.Response})
		}

		if chunk.Done {
			log.Debug("Generate stream done (reason: %s, eval: %d tokens)", chunk.DoneReason, chunk.EvalCount)
			callback(StreamEvent{Type: "done"})
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		// When the context is canceled the HTTP body closes and the
		// scanner sees an IO error. Return the context error so callers
		// can tell cancellation from a broken stream.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("Stream scanner error: %v", err)
		return fmt.Errorf("%w: %v", ErrStreamError, err)
	}

	// Stream ended without a done chunk; still signal completion.
	log.Debug("Generate stream ended without done chunk")
	callback(StreamEvent{Type: "done"})
	return nil
}

// ListModels fetches the locally installed models from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	log.Debug("HTTP GET %s/api/tags", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("HTTP request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Ollama error %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRequestFailed, err)
	}

	return tags.Models, nil
}
