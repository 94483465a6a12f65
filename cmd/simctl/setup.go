package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"airlinesim"
	"airlinesim/agents/company"
	"airlinesim/agents/evaluation"
	"airlinesim/agents/market"
	"airlinesim/llm"
	"airlinesim/llm/bedrock"
	"airlinesim/llm/mock"
	"airlinesim/llm/ollama"
	"airlinesim/slack"
	"airlinesim/store"
	"airlinesim/workflow"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"github.com/spf13/cobra"
)

const ollamaSystemPrompt = `You are an expert business strategy evaluator for an airline management simulation.
When the request asks for JSON, return only the JSON object.`

// app is everything a subcommand needs. cleanup must be called before exit.
type app struct {
	orch    *workflow.Orchestrator
	repo    *store.Repository
	sim     airlinesim.SimulationConfig
	cleanup func() error
}

func decode(target any) error {
	err := envdecode.Decode(target)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	return nil
}

func newApp(ctx context.Context) (*app, error) {
	var simConfig airlinesim.SimulationConfig
	if err := decode(&simConfig); err != nil {
		return nil, err
	}
	var storeConfig airlinesim.StoreConfig
	if err := decode(&storeConfig); err != nil {
		return nil, err
	}
	var notifyConfig airlinesim.NotifyConfig
	if err := decode(&notifyConfig); err != nil {
		return nil, err
	}

	if llmBackend != "" {
		simConfig.LLMBackend = llmBackend
	}
	if storeBackend != "" {
		storeConfig.Backend = storeBackend
	}
	if storeDir != "" {
		storeConfig.Dir = storeDir
	}
	if seed != 0 {
		simConfig.RandomSeed = seed
	}
	if workers > 0 {
		simConfig.Workers = workers
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		awsCfg = &cfg
		return cfg, nil
	}

	repo, err := newRepository(storeConfig, loadAWS)
	if err != nil {
		return nil, err
	}

	gen, model, err := newGenerator(simConfig, loadAWS)
	if err != nil {
		return nil, err
	}

	opts := workflow.Options{
		Workers:       simConfig.Workers,
		NotifyChannel: notifyConfig.SlackChannel,
	}
	if notifyConfig.SlackWebhookURL != "" {
		opts.Notifier = slack.NewNotifier(notifyConfig.SlackWebhookURL, http.DefaultClient)
	}

	reporter, shutdown, err := newReporter(ctx)
	if err != nil {
		return nil, err
	}
	opts.Reporter = reporter

	cleanup := func() error { return shutdown(ctx) }
	if stageLog {
		logger, done, err := newStageLogger(model)
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
		opts.StageLogger = logger
		cleanup = func() error { return errors.Join(done(), shutdown(ctx)) }
	}

	orch := workflow.New(
		company.NewAgent(gen, repo),
		market.NewSimulator(gen, repo, market.NewRandom(simConfig.RandomSeed)),
		evaluation.NewEvaluator(gen, repo),
		repo,
		opts,
	)

	return &app{orch: orch, repo: repo, sim: simConfig, cleanup: cleanup}, nil
}

func newRepository(cfg airlinesim.StoreConfig, loadAWS func() (aws.Config, error)) (*store.Repository, error) {
	switch cfg.Backend {
	case "", "file":
		slog.Info("SETUP: File document store initialized", "dir", cfg.Dir)
		return store.NewRepository(store.NewFileStore(cfg.Dir)), nil
	case "memory":
		return store.NewRepository(store.NewMemoryStore()), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("missing S3 config: STORE_S3_BUCKET must be set")
		}
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		slog.Info("SETUP: S3 document store initialized", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return store.NewRepository(store.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix)), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// newGenerator returns the configured text generator and a model name used for log file names.
func newGenerator(cfg airlinesim.SimulationConfig, loadAWS func() (aws.Config, error)) (airlinesim.TextGenerator, string, error) {
	if cfg.LLMBackend == "mock" {
		return llm.WithTimeout(mock.Offline(), cfg.LLMTimeout), "mock", nil
	}

	var modelConfig airlinesim.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		return nil, "", fmt.Errorf("failed to decode model config: %w", err)
	}

	switch cfg.LLMBackend {
	case "ollama":
		client, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.BaseOllamaEndpoint,
			ModelID:      modelConfig.ModelID,
			SystemPrompt: ollamaSystemPrompt,
			HTTPClient:   http.DefaultClient,
		})
		if err != nil {
			return nil, "", err
		}
		return llm.WithTimeout(client, cfg.LLMTimeout), modelConfig.ModelID, nil
	case "", "bedrock":
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, "", err
		}
		client := bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     modelConfig.ModelID,
			MaxTokens:   modelConfig.MaxTokens,
			Temperature: modelConfig.Temperature,
			TopP:        modelConfig.TopP,
		})
		return llm.WithTimeout(client, cfg.LLMTimeout), modelConfig.ModelID, nil
	default:
		return nil, "", fmt.Errorf("unknown llm backend %q", cfg.LLMBackend)
	}
}

func newStageLogger(model string) (airlinesim.StageLogger, func() error, error) {
	path := airlinesim.NewStageLogFilePath(strings.ReplaceAll(model, "/", "_"))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file: %w", err)
	}
	logger := airlinesim.NewFileStageLogger(f)
	cleanup := func() error {
		return errors.Join(logger.Flush(), f.Close())
	}
	slog.Info("SETUP: Writing stage logs", "path", path)
	return logger, cleanup, nil
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.cleanup(); err != nil {
			slog.Error("SETUP: Failed to clean up", "error", err)
		}
	}()
	return fn(ctx, a)
}
