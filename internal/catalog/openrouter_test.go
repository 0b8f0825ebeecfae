package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFreeModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"meta-llama/llama-3-8b:free","name":"Llama 3 8B (free)","context_length":8192,"pricing":{"prompt":"0","completion":"0"}},
			{"id":"openai/gpt-4o","name":"GPT-4o","context_length":128000,"pricing":{"prompt":"0.000005","completion":"0.000015"}},
			{"id":"mistralai/mistral-7b:free","name":"Mistral 7B (free)","context_length":32768,"pricing":{"prompt":"0","completion":"0"}}
		]}`)
	}))
	defer srv.Close()

	models := NewOpenRouterWithURL(srv.URL).FreeModels(context.Background())
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].ID != "meta-llama/llama-3-8b:free" {
		t.Errorf("models[0].ID = %q", models[0].ID)
	}
	if models[0].Provider != "openrouter" {
		t.Errorf("Provider = %q, want openrouter", models[0].Provider)
	}
	if models[1].ContextLength != 32768 {
		t.Errorf("ContextLength = %d", models[1].ContextLength)
	}
}

func TestFreeModels_FetchFailureDegradesToEmpty(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		if models := NewOpenRouterWithURL(srv.URL).FreeModels(context.Background()); len(models) != 0 {
			t.Errorf("models = %v, want empty", models)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		if models := NewOpenRouterWithURL("http://127.0.0.1:1").FreeModels(context.Background()); len(models) != 0 {
			t.Errorf("models = %v, want empty", models)
		}
	})
}

func TestIsZeroPrice(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"0.0", true},
		{"", true},
		{"0.000005", false},
		{"not-a-price", false},
	}
	for _, tc := range cases {
		if got := isZeroPrice(tc.in); got != tc.want {
			t.Errorf("isZeroPrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
