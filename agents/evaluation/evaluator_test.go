package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"airlinesim"
	"airlinesim/llm/mock"
	"airlinesim/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		Plan: airlinesim.Plan{TeamID: "alpha", Period: "F25", TotalBudget: 120_000, Actions: []airlinesim.Action{
			{Type: airlinesim.ActionMarketing, Description: "ads", Cost: 40_000},
			{Type: airlinesim.ActionStaffTraining, Description: "crew", Cost: 30_000},
			{Type: airlinesim.ActionMaintenance, Description: "hangar", Cost: 50_000},
		}},
		Outcome: airlinesim.ImplementationOutcome{
			TeamID:   "alpha",
			Approved: []airlinesim.Action{{Cost: 30_000}, {Cost: 40_000}},
			Rejected: []airlinesim.Action{{Cost: 50_000}},
			CashUsed: 70_000,
		},
		Team:   airlinesim.TeamState{TeamID: "alpha", Cash: 30_000, CapacityUnits: 2, Routes: []string{"A", "B", "C", "D"}, MarketShare: 0.4, Reputation: 55},
		Market: airlinesim.DefaultMarketState(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func newTestEvaluator(gen airlinesim.TextGenerator, history feedbackRepository) *Evaluator {
	e := NewEvaluator(gen, history)
	e.now = func() time.Time { return time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

func TestEvaluator_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		gen        airlinesim.TextGenerator
		wantSource string
		wantScore  float64
	}{
		{
			name:       "structured answer",
			gen:        mock.Offline(),
			wantSource: airlinesim.SourceStructured,
			wantScore:  72,
		},
		{
			name:       "free text answer",
			gen:        mock.NewGenerator().Default("Overall score: 61; a good start.", nil),
			wantSource: airlinesim.SourceText,
			wantScore:  61,
		},
		{
			name:       "service always errors",
			gen:        mock.NewGenerator().Default("", airlinesim.ErrServiceUnavailable),
			wantSource: airlinesim.SourceFallback,
			wantScore:  70,
		},
		{
			name:       "no service",
			wantSource: airlinesim.SourceFallback,
			wantScore:  70,
		},
		{
			name: "panicking service",
			gen: airlinesim.TextGeneratorFunc(func(context.Context, string) (string, error) {
				panic("boom")
			}),
			wantSource: airlinesim.SourceFallback,
			wantScore:  70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := store.NewRepository(store.NewMemoryStore())
			fb, err := newTestEvaluator(tt.gen, repo).Evaluate(context.Background(), sampleInput())
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, fb.Source)
			assert.Equal(t, tt.wantScore, fb.Score)
			assert.GreaterOrEqual(t, fb.Score, 0.0)
			assert.LessOrEqual(t, fb.Score, 100.0)
			assert.NotEmpty(t, fb.Strengths)
			assert.NotEmpty(t, fb.ImprovementAreas)
			assert.Equal(t, "alpha", fb.TeamID)
			assert.Equal(t, "F25", fb.Period)

			history, err := repo.FeedbackHistory(context.Background(), "alpha", 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, fb.ID, history[0].ID)
		})
	}
}

type failingHistory struct{}

func (failingHistory) AppendFeedback(context.Context, *airlinesim.EvaluationFeedback) error {
	return errors.New("disk full")
}

func TestEvaluator_HistoryFailureStillScores(t *testing.T) {
	fb, err := newTestEvaluator(mock.Offline(), failingHistory{}).Evaluate(context.Background(), sampleInput())
	require.Error(t, err)
	assert.Equal(t, 72.0, fb.Score)
}

func TestEvaluator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fb, err := newTestEvaluator(mock.Offline(), nil).Evaluate(ctx, sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, airlinesim.SourceFallback, fb.Source)
}

func TestPrompt(t *testing.T) {
	prompt := Prompt(sampleInput())

	assert.Contains(t, prompt, "Team: alpha")
	assert.Contains(t, prompt, "Proposed Budget: $120,000.00")
	assert.Contains(t, prompt, "3. maintenance_upgrade: hangar ($50,000.00)")
	assert.Contains(t, prompt, "Approved Actions: 2")
	assert.Contains(t, prompt, "- Active Routes: 4 (A, B, C, ...)")
	assert.Contains(t, prompt, "- Recent Events: none")
	for _, c := range []string{"Strategic Coherence (25%)", "Resource Management (25%)", "Market Awareness (25%)", "Implementation Feasibility (25%)"} {
		assert.Contains(t, prompt, c)
	}

	start := strings.Index(prompt, "JSON Schema:\n") + len("JSON Schema:\n")
	end := strings.Index(prompt, "\nEVALUATION CRITERIA")
	var schema struct {
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end]), &schema))
	assert.Equal(t, []string{"score", "feedback_text", "strengths", "improvement_areas"}, schema.Required)
}
