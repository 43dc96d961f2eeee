// Package llm implements thin completion clients for the supported model
// providers. Each client is a plain net/http JSON client; the caller bounds
// the call with its context and no retries are performed here.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Supported provider selectors.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Providers lists the valid provider selectors.
func Providers() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// Client produces one completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config configures a provider client. Zero values fall back to the
// provider's default base URL, model, and a 120s transport timeout.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Factory builds a client for a provider selector. The indirection exists so
// tests can substitute a stub client.
type Factory func(provider string, cfg Config) (Client, error)

// New is the default Factory.
func New(provider string, cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return newOpenAIClient(cfg), nil
	case ProviderAnthropic:
		return newAnthropicClient(cfg), nil
	case ProviderGemini:
		return newGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Error text fragments that identify auth and quota failures across
// providers when the status code alone is ambiguous.
var (
	authPatterns  = []string{"invalid api key", "invalid x-api-key", "incorrect api key", "authentication", "api key not valid", "unauthorized"}
	quotaPatterns = []string{"quota", "rate limit", "billing", "insufficient_quota", "resource has been exhausted"}
)

// mapProviderError classifies a non-2xx provider response. The raw provider
// body is matched but never wrapped into the returned error, so it cannot
// leak to callers.
func mapProviderError(status int, body []byte) error {
	text := strings.ToLower(string(body))
	switch {
	case status == http.StatusTooManyRequests || containsAny(text, quotaPatterns):
		return apperr.ErrProviderQuota
	case status == http.StatusUnauthorized || status == http.StatusForbidden || containsAny(text, authPatterns):
		return apperr.ErrProviderAuth
	default:
		return fmt.Errorf("llm: provider returned status %d", status)
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
