package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"airlinesim"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeout(t *testing.T) {
	tests := []struct {
		name      string
		gen       airlinesim.TextGenerator
		timeout   time.Duration
		want      string
		wantErrIs error
	}{
		{
			name: "passes response through",
			gen: airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				return "ok: " + prompt, nil
			}),
			want: "ok: hi",
		},
		{
			name: "plain error becomes service unavailable",
			gen: airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("dial tcp: refused")
			}),
			wantErrIs: airlinesim.ErrServiceUnavailable,
		},
		{
			name: "classified error is kept",
			gen: airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				return "", airlinesim.ErrMalformedResponse
			}),
			wantErrIs: airlinesim.ErrMalformedResponse,
		},
		{
			name: "blank response is malformed",
			gen: airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				return "  \n", nil
			}),
			wantErrIs: airlinesim.ErrMalformedResponse,
		},
		{
			name:    "deadline is service unavailable",
			timeout: 10 * time.Millisecond,
			gen: airlinesim.TextGeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}),
			wantErrIs: airlinesim.ErrServiceUnavailable,
		},
		{
			name:      "nil generator is service unavailable",
			wantErrIs: airlinesim.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := WithTimeout(tt.gen, tt.timeout).Complete(context.Background(), "hi")
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
