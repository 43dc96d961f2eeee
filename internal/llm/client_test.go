package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestNew_KnownProviders(t *testing.T) {
	for _, p := range Providers() {
		if _, err := New(p, Config{APIKey: "k"}); err != nil {
			t.Errorf("New(%q): %v", p, err)
		}
	}
	// Selector matching is case and whitespace insensitive.
	if _, err := New("  OpenAI ", Config{}); err != nil {
		t.Errorf("New with padded selector: %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New("oracle", Config{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMapProviderError(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusTooManyRequests, "", apperr.ErrProviderQuota},
		{http.StatusBadRequest, "insufficient_quota for this account", apperr.ErrProviderQuota},
		{http.StatusUnauthorized, "", apperr.ErrProviderAuth},
		{http.StatusForbidden, "", apperr.ErrProviderAuth},
		{http.StatusBadRequest, "API key not valid. Please pass a valid key.", apperr.ErrProviderAuth},
	}
	for _, tc := range cases {
		got := mapProviderError(tc.status, []byte(tc.body))
		if !errors.Is(got, tc.want) {
			t.Errorf("mapProviderError(%d, %q) = %v, want %v", tc.status, tc.body, got, tc.want)
		}
	}

	// Unclassified failures keep only the status code, never the body.
	err := mapProviderError(http.StatusInternalServerError, []byte("secret internal detail"))
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("provider body leaked into error: %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		msgs := req["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("messages = %d, want 2", len(msgs))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"title":"T"}`}},
			},
		})
	}))
	defer srv.Close()

	c := newOpenAIClient(Config{APIKey: "sk-test", BaseURL: srv.URL})
	got, err := c.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"title":"T"}` {
		t.Errorf("content = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestOpenAIComplete_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newOpenAIClient(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, apperr.ErrProviderAuth) {
		t.Errorf("err = %v, want ErrProviderAuth", err)
	}
}

func TestOpenAIComplete_QuotaFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit reached"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "s", "u")
	if !errors.Is(err, apperr.ErrProviderQuota) {
		t.Errorf("err = %v, want ErrProviderQuota", err)
	}
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ak-test" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "part one "},
				{"type": "text", "text": "part two"},
			},
		})
	}))
	defer srv.Close()

	c := newAnthropicClient(Config{APIKey: "ak-test", BaseURL: srv.URL})
	got, err := c.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "part one part two" {
		t.Errorf("content = %q", got)
	}
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "gk-test" {
			t.Errorf("key param = %q", r.URL.Query().Get("key"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]string{{"text": "gemini says hi"}},
				}},
			},
		})
	}))
	defer srv.Close()

	c := newGeminiClient(Config{APIKey: "gk-test", BaseURL: srv.URL})
	got, err := c.Complete(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "gemini says hi" {
		t.Errorf("content = %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	system, user := BuildPrompt("the material", "keep it short", []string{"logo.png", "chart.png"})
	if !strings.Contains(system, "logo.png, chart.png") {
		t.Error("system prompt missing media names")
	}
	if !strings.Contains(user, "Guidance: keep it short") {
		t.Error("user prompt missing guidance")
	}
	if !strings.Contains(user, "the material") {
		t.Error("user prompt missing content")
	}

	system, user = BuildPrompt("x", "", nil)
	if strings.Contains(system, "Available template images") {
		t.Error("system prompt should omit media section when empty")
	}
	if strings.Contains(user, "Guidance:") {
		t.Error("user prompt should omit empty guidance")
	}
}
