package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"airlinesim"
	"airlinesim/agents/company"
	"airlinesim/agents/evaluation"
	"airlinesim/agents/market"
	"airlinesim/llm"
	"airlinesim/llm/bedrock"
	"airlinesim/slack"
	"airlinesim/store"
	"airlinesim/workflow"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
)

// Params selects what the invocation does. Action defaults to "process" when plans are given
// and to "period" when only a semester is.
type Params struct {
	Action string            `json:"action"`
	Plans  []airlinesim.Plan `json:"plans"`
	Period string            `json:"semester"`
}

type Results struct {
	Output any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var modelConfig airlinesim.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var simConfig airlinesim.SimulationConfig
		if err := envdecode.Decode(&simConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var storeConfig airlinesim.StoreConfig
		if err := envdecode.Decode(&storeConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		if storeConfig.S3Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: STORE_S3_BUCKET must be set")
		}

		var notifyConfig airlinesim.NotifyConfig
		if err := envdecode.Decode(&notifyConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		repo := store.NewRepository(store.NewS3Store(s3.NewFromConfig(awsCfg), storeConfig.S3Bucket, storeConfig.S3Prefix))
		slog.Info("SETUP: S3 document store initialized", "bucket", storeConfig.S3Bucket, "prefix", storeConfig.S3Prefix)

		gen := llm.WithTimeout(bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		}), simConfig.LLMTimeout)

		opts := workflow.Options{
			Workers:       simConfig.Workers,
			StageLogger:   airlinesim.NewStdoutStageLogger(),
			NotifyChannel: notifyConfig.SlackChannel,
		}
		if notifyConfig.SlackWebhookURL != "" {
			opts.Notifier = slack.NewNotifier(notifyConfig.SlackWebhookURL, http.DefaultClient)
		}

		reporter, shutdown, err := newReporter(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()
		opts.Reporter = reporter

		orch := workflow.New(
			company.NewAgent(gen, repo),
			market.NewSimulator(gen, repo, market.NewRandom(simConfig.RandomSeed)),
			evaluation.NewEvaluator(gen, repo),
			repo,
			opts,
		)

		output, err := handle(ctx, orch, params)
		if err != nil {
			slog.Error("RESULT: Error handling request", "action", params.Action, "error", err)
			return Results{}, err
		}
		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}

func handle(ctx context.Context, orch *workflow.Orchestrator, params Params) (any, error) {
	action := params.Action
	if action == "" {
		action = "process"
		if len(params.Plans) == 0 && params.Period != "" {
			action = "period"
		}
	}

	switch action {
	case "process":
		return orch.Process(ctx, params.Plans), nil
	case "period":
		return orch.ProcessPeriod(ctx, params.Period)
	case "status":
		return orch.Status(ctx)
	case "reset":
		return orch.Reset(ctx)
	default:
		return nil, fmt.Errorf("unknown action %q", action)
	}
}

// newReporter starts OpenTelemetry when OTEL_ENABLED is set. Otherwise it returns a nil
// reporter and a no-op shutdown.
func newReporter(ctx context.Context) (airlinesim.Reporter, func(context.Context) error, error) {
	var otelConfig airlinesim.OtelConfig
	if err := envdecode.Decode(&otelConfig); err != nil {
		return nil, nil, err
	}
	if !otelConfig.Enabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	tracerProvider, meterProvider, shutdown, err := airlinesim.InitOtel(ctx)
	if err != nil {
		return nil, nil, err
	}
	reporter := airlinesim.NewOtelReporter(
		tracerProvider.Tracer(airlinesim.TracerName),
		meterProvider.Meter(airlinesim.TracerName),
	)
	return reporter, shutdown, nil
}
