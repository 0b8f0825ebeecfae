// Package catalog lists models from the OpenRouter catalog, the second
// model provider next to the local Ollama install.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/youruser/texai/internal/logging"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1/models"

var log = logging.Get()

// Model is one OpenRouter catalog entry offered to the front-end.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
	Provider      string `json:"provider"`
}

// OpenRouter fetches the public model catalog and filters it.
type OpenRouter struct {
	url        string
	httpClient *http.Client
}

// NewOpenRouter creates a client against the public OpenRouter API.
func NewOpenRouter() *OpenRouter {
	return &OpenRouter{
		url:        defaultOpenRouterURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewOpenRouterWithURL creates a client against a custom endpoint.
func NewOpenRouterWithURL(url string) *OpenRouter {
	return &OpenRouter{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FreeModels returns the models whose prompt and completion prices are
// both zero. A fetch or decode failure degrades to an empty list: the
// OpenRouter catalog is an optional extra, never a hard dependency.
func (o *OpenRouter) FreeModels(ctx context.Context) []Model {
	req, err := http.NewRequestWithContext(ctx, "GET", o.url, nil)
	if err != nil {
		log.Error("openrouter: building request: %v", err)
		return nil
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		log.Error("openrouter: fetching models: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("openrouter: status %d: %s", resp.StatusCode, string(body))
		return nil
	}

	var payload struct {
		Data []struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Description   string `json:"description"`
			ContextLength int    `json:"context_length"`
			Pricing       struct {
				Prompt     string `json:"prompt"`
				Completion string `json:"completion"`
			} `json:"pricing"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Error("openrouter: decoding models: %v", err)
		return nil
	}

	var free []Model
	for _, m := range payload.Data {
		if !isZeroPrice(m.Pricing.Prompt) || !isZeroPrice(m.Pricing.Completion) {
			continue
		}
		free = append(free, Model{
			ID:            m.ID,
			Name:          m.Name,
			Description:   m.Description,
			ContextLength: m.ContextLength,
			Provider:      "openrouter",
		})
	}

	log.Debug("openrouter: %d free models of %d total", len(free), len(payload.Data))
	return free
}

// isZeroPrice parses OpenRouter's string-encoded per-token prices.
// Unparseable prices count as paid.
func isZeroPrice(s string) bool {
	if s == "" {
		return true
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return price == 0
}
