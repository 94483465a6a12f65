package airlinesim

import "time"

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=1024"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type SimulationConfig struct {
	LLMBackend         string        `env:"LLM_BACKEND,default=bedrock"`
	BaseOllamaEndpoint string        `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT,default=20s"`
	Workers            int           `env:"WORKERS,default=4"`
	RandomSeed         uint64        `env:"RANDOM_SEED,default=0"`
	StartingCash       float64       `env:"STARTING_CASH,default=1000000"`
	StartingReputation float64       `env:"STARTING_REPUTATION,default=50"`
}

type StoreConfig struct {
	Backend  string `env:"STORE_BACKEND,default=file"`
	Dir      string `env:"STORE_DIR,default=./data"`
	S3Bucket string `env:"STORE_S3_BUCKET"`
	S3Prefix string `env:"STORE_S3_PREFIX,default=airline-sim"`
}

type NotifyConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#instructors"`
}
