// Package llm holds helpers shared by every text-generation backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"airlinesim"
)

// DefaultTimeout bounds a single completion when no timeout is configured.
const DefaultTimeout = 20 * time.Second

// WithTimeout wraps gen so every call carries a deadline and every failure is classified.
// Transport errors and deadlines wrap ErrServiceUnavailable; blank responses wrap ErrMalformedResponse.
func WithTimeout(gen airlinesim.TextGenerator, timeout time.Duration) airlinesim.TextGenerator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if gen == nil {
			return "", fmt.Errorf("%w: no text generator configured", airlinesim.ErrServiceUnavailable)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		out, err := gen.Complete(ctx, prompt)
		if err != nil {
			slog.Warn("LLM_CLIENT: Completion failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			if errors.Is(err, airlinesim.ErrServiceUnavailable) || errors.Is(err, airlinesim.ErrMalformedResponse) {
				return "", err
			}
			return "", fmt.Errorf("%w: %w", airlinesim.ErrServiceUnavailable, err)
		}
		if strings.TrimSpace(out) == "" {
			return "", fmt.Errorf("%w: empty response", airlinesim.ErrMalformedResponse)
		}
		return out, nil
	})
}
