package evaluation

import (
	"fmt"

	"airlinesim"
)

// Metrics are the implementation figures the deterministic score is computed from.
type Metrics struct {
	ApprovalRate     float64
	BudgetEfficiency float64
	Approved         int
	Rejected         int
	Actions          int
	CashUsed         float64
	DeclaredBudget   float64
}

// MetricsFor derives the figures from a plan and its outcome. A plan without actions has an
// approval rate of 0 and a plan without a declared budget has an efficiency of 0.
func MetricsFor(plan airlinesim.Plan, outcome airlinesim.ImplementationOutcome) Metrics {
	m := Metrics{
		Approved:       len(outcome.Approved),
		Rejected:       len(outcome.Rejected),
		Actions:        len(plan.Actions),
		CashUsed:       outcome.CashUsed,
		DeclaredBudget: plan.TotalBudget,
	}
	if m.Actions > 0 {
		m.ApprovalRate = float64(m.Approved) / float64(m.Actions)
	}
	if m.DeclaredBudget > 0 {
		m.BudgetEfficiency = m.CashUsed / m.DeclaredBudget
	}
	return m
}

// Fallback scores a team without the text-generation service. Equal metrics give equal results.
func Fallback(m Metrics) Assessment {
	score := int(m.ApprovalRate*50 + m.BudgetEfficiency*30 + 20)
	score = max(0, min(100, score))

	var strengths, improvements []string
	if m.ApprovalRate > 0.8 {
		strengths = append(strengths, "High plan feasibility")
	}
	if m.BudgetEfficiency > 0.7 {
		strengths = append(strengths, "Efficient resource allocation")
	}
	if m.Actions > 5 {
		strengths = append(strengths, "Comprehensive planning")
	}
	if m.ApprovalRate < 0.5 {
		improvements = append(improvements, "Plan feasibility and validation")
	}
	if m.BudgetEfficiency < 0.5 {
		improvements = append(improvements, "Budget planning and utilization")
	}
	if m.Rejected > 3 {
		improvements = append(improvements, "Resource constraint awareness")
	}
	if len(strengths) == 0 {
		strengths = []string{"Strategic initiative"}
	}
	if len(improvements) == 0 {
		improvements = []string{"Strategic alignment"}
	}

	text := fmt.Sprintf("Your semester plan achieved a %.1f%% approval rate with %d out of %d actions implemented. "+
		"You utilized %s of your %s budget (%.1f%% efficiency).\n\n"+
		"Focus on aligning your strategic actions with your airline's current capabilities and market position.",
		m.ApprovalRate*100, m.Approved, m.Actions,
		airlinesim.FormatMoney(m.CashUsed), airlinesim.FormatMoney(m.DeclaredBudget), m.BudgetEfficiency*100)

	return Assessment{
		Score:            float64(score),
		FeedbackText:     text,
		Strengths:        strengths,
		ImprovementAreas: improvements,
		Source:           airlinesim.SourceFallback,
	}
}
