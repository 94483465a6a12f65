package airlinesim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// StageLogger records per-team stage transitions of a simulation run.
type StageLogger interface {
	LogStage(entry StageLog) error
}

// NewStageLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify logs produced with various models.
func NewStageLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// StageLog is one team's passage through one workflow stage.
type StageLog struct {
	TeamID    string         `json:"team_id,omitempty"`
	Stage     string         `json:"stage"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration_ns,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FileStageLogger accumulates entries and writes them as one JSON document on Flush.
// Safe for concurrent use since per-team stages run in parallel.
type FileStageLogger struct {
	mu      sync.Mutex
	entries []StageLog
	writer  io.Writer
}

func NewFileStageLogger(writer io.Writer) *FileStageLogger {
	return &FileStageLogger{
		entries: make([]StageLog, 0),
		writer:  writer,
	}
}

// LogStage buffers the entry (does not flush immediately)
func (l *FileStageLogger) LogStage(entry StageLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Flush writes all accumulated entries to the writer.
func (l *FileStageLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"simulation_run": map[string]any{
			"timestamp": time.Now(),
			"stages":    l.entries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stage log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write stage log: %w", err)
	}

	l.entries = l.entries[:0]
	return nil
}

// NoOpStageLogger discards all entries.
type NoOpStageLogger struct{}

func NewNoOpStageLogger() *NoOpStageLogger {
	return &NoOpStageLogger{}
}

func (nop *NoOpStageLogger) LogStage(entry StageLog) error {
	return nil
}

// StdoutStageLogger writes each entry as a JSON line to stdout (for Lambda/CloudWatch).
type StdoutStageLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutStageLogger() *StdoutStageLogger {
	return &StdoutStageLogger{w: os.Stdout}
}

func (l *StdoutStageLogger) LogStage(entry StageLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.w, string(data))
	return err
}
