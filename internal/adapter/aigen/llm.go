package aigen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paperforge/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LLM is the minimal completion surface the adapters need. *ollama.LLM
// satisfies it; tests substitute a scripted fake.
type LLM interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

// NewOllamaLLM builds the langchaingo client from configuration.
func NewOllamaLLM(cfg config.LLMConfig) (*ollama.LLM, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return llm, nil
}

// sanitizeResponse strips reasoning tags and markdown code fences that
// some models wrap around their JSON output.
func sanitizeResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):]
			cleaned = strings.TrimSpace(cleaned)
		}
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// extractJSONArray pulls the outermost JSON array out of an LLM response
// that may contain surrounding prose.
func extractJSONArray(raw string) (string, error) {
	cleaned := sanitizeResponse(raw)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON array found in LLM response: %s", truncateForLog(cleaned))
	}
	return cleaned[start : end+1], nil
}

func truncateForLog(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
