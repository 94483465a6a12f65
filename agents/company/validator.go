package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"airlinesim"
)

// FindingKind classifies an advisory validation message.
type FindingKind string

const (
	FindingOverBudget           FindingKind = "over_budget"
	FindingInsufficientCapacity FindingKind = "insufficient_capacity"
	FindingMissingBudget        FindingKind = "missing_budget"
	FindingAssessment           FindingKind = "assessment"
	FindingAssessmentFailed     FindingKind = "assessment_failed"
)

// Finding is one advisory message about a plan. Findings never block implementation.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
}

// Validator checks a plan against the team's budget and capacity and asks the
// text-generation service for a short qualitative assessment.
type Validator struct {
	gen airlinesim.TextGenerator
}

// NewValidator creates a validator. A nil generator skips the qualitative check
// and records an assessment_failed finding instead.
func NewValidator(gen airlinesim.TextGenerator) *Validator {
	return &Validator{gen: gen}
}

// Validate returns the advisory findings for plan against state. It never fails.
func (v *Validator) Validate(ctx context.Context, plan airlinesim.Plan, state airlinesim.TeamState) []Finding {
	var findings []Finding

	totalCost := plan.TotalCost()
	if totalCost > state.Cash {
		findings = append(findings, Finding{
			Kind: FindingOverBudget,
			Message: fmt.Sprintf("Plan is over budget by %s. Available: %s, Requested: %s",
				airlinesim.FormatMoney(totalCost-state.Cash),
				airlinesim.FormatMoney(state.Cash),
				airlinesim.FormatMoney(totalCost)),
		})
	}

	required := 0
	for _, a := range plan.Actions {
		if a.Type.NeedsCapacity() {
			required++
		}
	}
	if required > state.CapacityUnits {
		findings = append(findings, Finding{
			Kind: FindingInsufficientCapacity,
			Message: fmt.Sprintf("Insufficient aircraft for route operations. Available: %d, Required: %d",
				state.CapacityUnits, required),
		})
	}

	if plan.TotalBudget == 0 && len(plan.Actions) > 0 {
		findings = append(findings, Finding{
			Kind:    FindingMissingBudget,
			Message: "Plan declares no total budget; budget efficiency will be scored as 0",
		})
	}

	findings = append(findings, v.assess(ctx, plan, state))

	slog.Info("COMPANY: Plan validated", "team_id", plan.TeamID, "findings", len(findings), "total_cost", totalCost)
	return findings
}

func (v *Validator) assess(ctx context.Context, plan airlinesim.Plan, state airlinesim.TeamState) (f Finding) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("COMPANY: Assessment panicked", "team_id", plan.TeamID, "panic", r)
			f = Finding{Kind: FindingAssessmentFailed, Message: fmt.Sprintf("AI validation failed: %v", r)}
		}
	}()

	if v.gen == nil {
		return Finding{Kind: FindingAssessmentFailed, Message: "AI validation failed: no text generation service configured"}
	}

	out, err := v.gen.Complete(ctx, AssessmentPrompt(plan, state))
	if err != nil {
		slog.Warn("COMPANY: Assessment unavailable", "team_id", plan.TeamID, "error", err)
		return Finding{Kind: FindingAssessmentFailed, Message: fmt.Sprintf("AI validation failed: %v", err)}
	}
	return Finding{Kind: FindingAssessment, Message: "AI Strategic Assessment: " + strings.TrimSpace(out)}
}

// AssessmentPrompt summarizes the team's position and proposed actions for a coherence review.
func AssessmentPrompt(plan airlinesim.Plan, state airlinesim.TeamState) string {
	var b strings.Builder
	b.WriteString("Analyze this airline's semester plan for strategic coherence and feasibility.\n\n")
	b.WriteString("Airline State:\n")
	fmt.Fprintf(&b, "- Cash: %s\n", airlinesim.FormatMoney(state.Cash))
	fmt.Fprintf(&b, "- Aircraft: %d\n", state.CapacityUnits)
	fmt.Fprintf(&b, "- Current Routes: %s\n", routeList(state.Routes))
	fmt.Fprintf(&b, "- Market Share: %.2f%%\n", state.MarketShare*100)
	fmt.Fprintf(&b, "- Reputation: %.0f/100\n\n", state.Reputation)
	b.WriteString("Proposed Actions:\n")
	for _, a := range plan.Actions {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", a.Type, a.Description, airlinesim.FormatMoney(a.Cost))
	}
	fmt.Fprintf(&b, "\nTotal Budget: %s\n\n", airlinesim.FormatMoney(plan.TotalBudget))
	b.WriteString("Provide a brief assessment of:\n1. Strategic coherence\n2. Risk factors\n3. Feasibility concerns\n\nKeep response under 200 words.\n")
	return b.String()
}

func routeList(routes []string) string {
	if len(routes) == 0 {
		return "none"
	}
	return strings.Join(routes, ", ")
}

// Messages flattens findings into display strings.
func Messages(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}
