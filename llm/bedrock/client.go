package bedrock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"airlinesim"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	// defaultModelID is the default model ID for Bedrock Claude.
	// It's an inference profile ID or ARN, not the foundation model's ID.
	// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// Assessments are short; 1k tokens leaves room for the evaluation JSON.
	defaultMaxTokens = 1024

	// Low temperature keeps the structured evaluation responses consistent.
	defaultTemperature = 0.2

	defaultTopP = 0.9

	systemPrompt = `You are an expert business strategy evaluator for an airline management simulation used in a university course.
Answer concisely. When the request asks for JSON, return only the JSON object with no markdown fences.`
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
	System      string
}

// Client is a TextGenerator backed by the Bedrock Converse API.
type Client struct {
	brc  bedrockRuntimeClient
	opts Options
}

func NewClient(brc bedrockRuntimeClient, opts Options) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	if opts.System == "" {
		opts.System = systemPrompt
	}
	return &Client{
		brc:  brc,
		opts: opts,
	}
}

// Complete sends a single user turn and returns the assistant text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model_id", c.opts.ModelID, "prompt_len", len(prompt))

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.opts.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: c.opts.System},
		},
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err, "throttled", IsThrottled(err))
		return "", fmt.Errorf("%w: bedrock converse: %w", airlinesim.ErrServiceUnavailable, err)
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	if out.Usage != nil {
		attrs = append(attrs,
			"input_tokens", aws.ToInt32(out.Usage.InputTokens),
			"output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		return "", fmt.Errorf("%w: response blocked by Bedrock safety filters", airlinesim.ErrMalformedResponse)
	case types.StopReasonMaxTokens:
		// Truncated text is still useful to the lenient extractors.
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit; consider increasing MAX_TOKENS")
	}

	text := textFromOutput(out)
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", airlinesim.ErrMalformedResponse)
	}
	return text, nil
}

// textFromOutput returns assistant text:
// 1) If any text block looks like a single JSON object, return the last such block.
// 2) Else join all text blocks with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	if len(texts) == 0 {
		return ""
	}

	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s
		}
	}

	return strings.Join(texts, "\n")
}

// IsThrottled reports whether err came from Bedrock throttling the request.
func IsThrottled(err error) bool {
	var te *types.ThrottlingException
	return errors.As(err, &te)
}
