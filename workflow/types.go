package workflow

import (
	"context"
	"time"

	"airlinesim"
	"airlinesim/agents/company"
	"airlinesim/agents/evaluation"
	"airlinesim/agents/market"
)

// Status is where a team is in the pipeline. completed and the *_failed states are terminal.
type Status string

const (
	StatusReceived         Status = "received"
	StatusCompanyProcessed Status = "company_processed"
	StatusCompanyFailed    Status = "company_failed"
	StatusMarketProcessed  Status = "market_processed"
	StatusEvaluationFailed Status = "evaluation_failed"
	StatusCompleted        Status = "completed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCompanyFailed || s == StatusEvaluationFailed
}

type CompanyStage interface {
	ProcessPlan(ctx context.Context, plan airlinesim.Plan) (company.Result, error)
}

type MarketStage interface {
	Run(ctx context.Context, outcomes map[string]airlinesim.ImplementationOutcome) (market.Result, error)
}

type EvaluationStage interface {
	Evaluate(ctx context.Context, in evaluation.Input) (airlinesim.EvaluationFeedback, error)
}

type repository interface {
	ListTeams(ctx context.Context) ([]airlinesim.TeamState, error)
	MarketOrDefault(ctx context.Context) (airlinesim.MarketState, error)
	ResetMarket(ctx context.Context) (airlinesim.MarketState, error)
	PlansForPeriod(ctx context.Context, period string) ([]airlinesim.Plan, error)
	RegisterTeam(ctx context.Context, teamID, name string, cash, reputation float64) (airlinesim.TeamState, error)
}

// TeamResult is one team's entry in a batch result.
type TeamResult struct {
	TeamID     string                            `json:"team_id"`
	Status     Status                            `json:"status"`
	Error      string                            `json:"error,omitempty"`
	Findings   []company.Finding                 `json:"findings,omitempty"`
	Outcome    *airlinesim.ImplementationOutcome `json:"company_result,omitempty"`
	Team       *airlinesim.TeamState             `json:"team_state,omitempty"`
	Market     *airlinesim.MarketState           `json:"market_result,omitempty"`
	Evaluation *airlinesim.EvaluationFeedback    `json:"evaluation,omitempty"`

	plan airlinesim.Plan
	err  error
}

// Err is the error that moved the team into a failure state, if any.
func (r *TeamResult) Err() error {
	return r.err
}

// BatchSummary is the instructor view of a finished batch.
type BatchSummary struct {
	evaluation.Summary
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	AverageScore   float64 `json:"average_score"`
	MarketDegraded bool    `json:"market_degraded,omitempty"`
	MarketError    string  `json:"market_error,omitempty"`
}

// BatchResult is what Process returns. A batch that could not run at all carries Error and no teams.
type BatchResult struct {
	Teams     map[string]*TeamResult `json:"results"`
	Market    *market.Result         `json:"market,omitempty"`
	Summary   *BatchSummary          `json:"summary,omitempty"`
	Error     string                 `json:"error,omitempty"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration_ns"`
}
