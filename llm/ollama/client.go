package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"airlinesim"
)

type options struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
}

// Message is an Ollama chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a TextGenerator backed by a local Ollama server.
type Client struct {
	endpoint     string
	model        string
	systemPrompt string
	httpClient   airlinesim.HTTPClient
	options      options
}

type ClientOpts struct {
	BaseEndpoint string
	ModelID      string
	SystemPrompt string
	HTTPClient   airlinesim.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("ollama: model id is required")
	}
	if opts.BaseEndpoint == "" {
		return nil, fmt.Errorf("ollama: base endpoint is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		model:        opts.ModelID,
		systemPrompt: opts.SystemPrompt,
		httpClient:   opts.HTTPClient,
		endpoint:     strings.TrimRight(opts.BaseEndpoint, "/") + "/api/chat",
		options: options{
			Temperature:   0.2,
			TopP:          0.9,
			RepeatPenalty: 1.05,
			NumCtx:        8192,
		},
	}, nil
}

type wireRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options,omitempty"`
}

type wireResponse struct {
	Message Message `json:"message"`
	Error   string  `json:"error,omitempty"`
}

// Complete sends the prompt as a single user message and returns the model's content verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.model, "prompt_len", len(prompt))

	msgs := make([]Message, 0, 2)
	if sp := strings.TrimSpace(c.systemPrompt); sp != "" {
		msgs = append(msgs, Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})

	reqBytes, err := json.Marshal(wireRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   false,
		Options:  c.options,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", airlinesim.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", airlinesim.ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", airlinesim.ErrServiceUnavailable, resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed", "err", err, "body_len", len(body))
		return "", fmt.Errorf("%w: decode ollama response: %w", airlinesim.ErrMalformedResponse, err)
	}
	if wr.Error != "" {
		return "", fmt.Errorf("%w: %s", airlinesim.ErrServiceUnavailable, wr.Error)
	}

	return wr.Message.Content, nil
}
