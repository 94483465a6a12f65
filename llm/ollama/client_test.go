package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"airlinesim"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434"})
	assert.Error(t, err, "model id is required")

	_, err = NewClient(ClientOpts{ModelID: "llama3"})
	assert.Error(t, err, "endpoint is required")

	c, err := NewClient(ClientOpts{BaseEndpoint: "http://localhost:11434/", ModelID: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/api/chat", c.endpoint)
	assert.NotNil(t, c.httpClient)
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantErrIs error
	}{
		{
			name:   "returns message content",
			status: http.StatusOK,
			body:   `{"message":{"role":"assistant","content":"{\"reputation_change\": 2}"}}`,
			want:   `{"reputation_change": 2}`,
		},
		{
			name:      "non 200 is service unavailable",
			status:    http.StatusInternalServerError,
			body:      `model not loaded`,
			wantErrIs: airlinesim.ErrServiceUnavailable,
		},
		{
			name:      "undecodable body is malformed",
			status:    http.StatusOK,
			body:      `not json`,
			wantErrIs: airlinesim.ErrMalformedResponse,
		},
		{
			name:      "error field is service unavailable",
			status:    http.StatusOK,
			body:      `{"error":"out of memory"}`,
			wantErrIs: airlinesim.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got wireRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/chat", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) // nolint: errcheck
			}))
			defer srv.Close()

			c, err := NewClient(ClientOpts{
				BaseEndpoint: srv.URL,
				ModelID:      "llama3",
				SystemPrompt: "You grade airline plans.",
				HTTPClient:   srv.Client(),
			})
			require.NoError(t, err)

			out, err := c.Complete(context.Background(), "Rate team alpha")
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
			}

			assert.Equal(t, "llama3", got.Model)
			assert.False(t, got.Stream)
			require.Len(t, got.Messages, 2)
			assert.Equal(t, "system", got.Messages[0].Role)
			assert.Equal(t, "user", got.Messages[1].Role)
			assert.Equal(t, "Rate team alpha", got.Messages[1].Content)
		})
	}
}

func TestClient_CompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientOpts{BaseEndpoint: url, ModelID: "llama3"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "hello")
	assert.ErrorIs(t, err, airlinesim.ErrServiceUnavailable)
}
