package company

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airlinesim"
)

type teamRepository interface {
	GetTeam(ctx context.Context, teamID string) (airlinesim.TeamState, error)
	PutTeam(ctx context.Context, ts airlinesim.TeamState) error
	SavePlan(ctx context.Context, p airlinesim.Plan) error
}

// Result is everything the company stage produced for one team.
type Result struct {
	Findings []Finding                        `json:"findings"`
	Outcome  airlinesim.ImplementationOutcome `json:"outcome"`
	Team     airlinesim.TeamState             `json:"team_state"`
}

// Agent runs validation then implementation for one team's plan.
type Agent struct {
	validator   *Validator
	implementer *Implementer
	repo        teamRepository
}

func NewAgent(gen airlinesim.TextGenerator, repo teamRepository) *Agent {
	return &Agent{
		validator:   NewValidator(gen),
		implementer: NewImplementer(),
		repo:        repo,
	}
}

// ProcessPlan validates and implements plan, then persists the plan and the new team state.
// A missing team state returns an error wrapping airlinesim.ErrNotFound.
func (a *Agent) ProcessPlan(ctx context.Context, plan airlinesim.Plan) (Result, error) {
	start := time.Now()
	slog.Info("COMPANY: Processing plan", "team_id", plan.TeamID, "semester", plan.Period, "actions", len(plan.Actions))

	state, err := a.repo.GetTeam(ctx, plan.TeamID)
	if err != nil {
		return Result{}, fmt.Errorf("company stage: %w", err)
	}

	findings := a.validator.Validate(ctx, plan, state)
	outcome, updated := a.implementer.Implement(plan, state, findings)

	if err := a.repo.PutTeam(ctx, updated); err != nil {
		return Result{}, fmt.Errorf("company stage: save team %s: %w", plan.TeamID, err)
	}
	if err := a.repo.SavePlan(ctx, plan); err != nil {
		slog.Warn("COMPANY: Failed to store plan", "team_id", plan.TeamID, "error", err)
	}

	slog.Info("COMPANY: Plan implemented",
		"team_id", plan.TeamID,
		"approved", len(outcome.Approved),
		"rejected", len(outcome.Rejected),
		"cash_used", outcome.CashUsed,
		"cash_left", updated.Cash,
		"duration", time.Since(start),
	)
	return Result{Findings: findings, Outcome: outcome, Team: updated}, nil
}
