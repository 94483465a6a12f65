package evaluation

import (
	"testing"

	"airlinesim"

	"github.com/stretchr/testify/assert"
)

func actions(n int) []airlinesim.Action {
	return make([]airlinesim.Action, n)
}

func TestMetricsFor(t *testing.T) {
	plan := airlinesim.Plan{Actions: actions(4), TotalBudget: 200_000}
	outcome := airlinesim.ImplementationOutcome{Approved: actions(3), Rejected: actions(1), CashUsed: 150_000}

	m := MetricsFor(plan, outcome)
	assert.Equal(t, 0.75, m.ApprovalRate)
	assert.Equal(t, 0.75, m.BudgetEfficiency)
	assert.Equal(t, 1, m.Rejected)

	empty := MetricsFor(airlinesim.Plan{}, airlinesim.ImplementationOutcome{CashUsed: 10})
	assert.Equal(t, 0.0, empty.ApprovalRate, "no actions")
	assert.Equal(t, 0.0, empty.BudgetEfficiency, "no declared budget")
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name             string
		m                Metrics
		wantScore        float64
		wantStrengths    []string
		wantImprovements []string
	}{
		{
			name:             "everything approved and spent",
			m:                Metrics{ApprovalRate: 1, BudgetEfficiency: 1, Approved: 6, Actions: 6},
			wantScore:        100,
			wantStrengths:    []string{"High plan feasibility", "Efficient resource allocation", "Comprehensive planning"},
			wantImprovements: []string{"Strategic alignment"},
		},
		{
			name:             "nothing approved",
			m:                Metrics{Rejected: 5, Actions: 5},
			wantScore:        20,
			wantStrengths:    []string{"Strategic initiative"},
			wantImprovements: []string{"Plan feasibility and validation", "Budget planning and utilization", "Resource constraint awareness"},
		},
		{
			name:             "middle of the road",
			m:                Metrics{ApprovalRate: 2.0 / 3, BudgetEfficiency: 70_000.0 / 120_000, Approved: 2, Rejected: 1, Actions: 3},
			wantScore:        70, // 33.33 + 17.5 + 20 truncated
			wantStrengths:    []string{"Strategic initiative"},
			wantImprovements: []string{"Strategic alignment"},
		},
		{
			name:             "overspending is capped at 100",
			m:                Metrics{ApprovalRate: 1, BudgetEfficiency: 4, Approved: 1, Actions: 1},
			wantScore:        100,
			wantStrengths:    []string{"High plan feasibility", "Efficient resource allocation"},
			wantImprovements: []string{"Strategic alignment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.m)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantStrengths, got.Strengths)
			assert.Equal(t, tt.wantImprovements, got.ImprovementAreas)
			assert.Equal(t, airlinesim.SourceFallback, got.Source)
			assert.Equal(t, got, Fallback(tt.m), "deterministic")
		})
	}
}

func TestFallback_Text(t *testing.T) {
	got := Fallback(Metrics{ApprovalRate: 0.5, BudgetEfficiency: 0.25, Approved: 1, Actions: 2, CashUsed: 25_000, DeclaredBudget: 100_000})
	assert.Contains(t, got.FeedbackText, "50.0% approval rate with 1 out of 2 actions implemented")
	assert.Contains(t, got.FeedbackText, "You utilized $25,000.00 of your $100,000.00 budget (25.0% efficiency)")
}
