package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airlinesim"

	"golang.org/x/sync/errgroup"
)

const (
	minPassengers = 800_000
	maxPassengers = 1_500_000

	reputationCalls = 4
)

type marketRepository interface {
	MarketOrDefault(ctx context.Context) (airlinesim.MarketState, error)
	ListTeams(ctx context.Context) ([]airlinesim.TeamState, error)
	CommitTeams(ctx context.Context, teams []airlinesim.TeamState) error
	PutMarket(ctx context.Context, ms airlinesim.MarketState) error
}

// Result is the outcome of one market step.
type Result struct {
	Market   airlinesim.MarketState `json:"market_state"`
	Teams    []airlinesim.TeamState `json:"airlines"`
	Analysis Analysis               `json:"market_analysis"`
}

// DefaultResult is used by evaluation when the market step could not run.
func DefaultResult(now time.Time) Result {
	return Result{
		Market:   airlinesim.DefaultMarketState(now),
		Teams:    []airlinesim.TeamState{},
		Analysis: Analyze(nil),
	}
}

// Team returns the updated state of one team from the result.
func (r Result) Team(teamID string) (airlinesim.TeamState, bool) {
	for _, t := range r.Teams {
		if t.TeamID == teamID {
			return t, true
		}
	}
	return airlinesim.TeamState{}, false
}

// Simulator recomputes the shared market from the roster. It is the only writer of the market state.
type Simulator struct {
	gen  airlinesim.TextGenerator
	repo marketRepository
	rnd  Random
	now  func() time.Time
}

func NewSimulator(gen airlinesim.TextGenerator, repo marketRepository, rnd Random) *Simulator {
	return &Simulator{gen: gen, repo: repo, rnd: rnd, now: time.Now}
}

// Run reads a snapshot of the market and every team, computes the new values, then commits
// them in one batch. outcomes may be nil or miss teams.
func (s *Simulator) Run(ctx context.Context, outcomes map[string]airlinesim.ImplementationOutcome) (Result, error) {
	current, err := s.repo.MarketOrDefault(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("market stage: load market: %w", err)
	}
	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("market stage: load teams: %w", err)
	}

	res := s.Step(ctx, current, teams, outcomes)

	if err := s.repo.CommitTeams(ctx, res.Teams); err != nil {
		return Result{}, fmt.Errorf("market stage: %w", err)
	}
	if err := s.repo.PutMarket(ctx, res.Market); err != nil {
		return Result{}, fmt.Errorf("market stage: save market: %w", err)
	}
	slog.Info("MARKET: Committed market step",
		"teams", len(res.Teams),
		"total_passengers", res.Market.TotalPassengers,
		"economic_conditions", res.Market.EconomicConditions,
		"events", len(res.Market.Events),
	)
	return res, nil
}

// Step computes the next market and team states. It does not mutate its inputs and does not persist.
func (s *Simulator) Step(ctx context.Context, current airlinesim.MarketState, teams []airlinesim.TeamState, outcomes map[string]airlinesim.ImplementationOutcome) Result {
	now := s.now()
	analysis := Analyze(teams)
	events := GenerateEvents(s.rnd.Events)
	slog.Info("MARKET: Analyzed competition",
		"teams", len(teams),
		"total_capacity", analysis.TotalCapacity,
		"concentration", analysis.Concentration,
		"intensity", analysis.Intensity,
		"events", events,
	)

	updated := make([]airlinesim.TeamState, len(teams))
	for i, t := range teams {
		u := t.Clone()
		u.MarketShare = s.share(t, analysis)
		u.LastUpdated = now
		updated[i] = u
	}

	// The prompt shows the market as it stands plus this step's events.
	promptMarket := current
	promptMarket.Events = events
	deltas := s.reputationDeltas(ctx, teams, promptMarket, analysis, outcomes)
	for i := range updated {
		updated[i].Reputation = airlinesim.Clamp(updated[i].Reputation+float64(deltas[i]), 0, 100)
		updated[i].Normalize()
	}

	next := airlinesim.MarketState{
		TotalPassengers:    s.demand(current.TotalPassengers, analysis),
		CompetitionLevel:   analysis.Intensity,
		EconomicConditions: Conditions(events),
		Events:             events,
		LastUpdated:        now,
	}
	return Result{Market: next, Teams: updated, Analysis: analysis}
}

func (s *Simulator) share(t airlinesim.TeamState, a Analysis) float64 {
	if a.TotalCapacity == 0 {
		return 0
	}
	capacityShare := float64(t.CapacityUnits) / float64(a.TotalCapacity)
	reputationFactor := t.Reputation / 100
	return airlinesim.Clamp(capacityShare*reputationFactor*(1+uniform(s.rnd.Share, -0.1, 0.1)), 0, 1)
}

func (s *Simulator) demand(old int64, a Analysis) int64 {
	competition := 1 + 0.2*a.Intensity
	reputation := 1 + 0.1*(a.AverageReputation-neutralReputation)/100
	jitter := 1 + uniform(s.rnd.Demand, -0.05, 0.05)
	next := int64(float64(old) * competition * reputation * jitter)
	return max(minPassengers, min(maxPassengers, next))
}

// reputationDeltas asks for every team's adjustment concurrently. Any failure yields 0 for that team.
func (s *Simulator) reputationDeltas(ctx context.Context, teams []airlinesim.TeamState, m airlinesim.MarketState, a Analysis, outcomes map[string]airlinesim.ImplementationOutcome) []int {
	deltas := make([]int, len(teams))
	if s.gen == nil {
		return deltas
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reputationCalls)
	for i, t := range teams {
		var outcome *airlinesim.ImplementationOutcome
		if o, ok := outcomes[t.TeamID]; ok {
			outcome = &o
		}
		g.Go(func() error {
			deltas[i] = s.reputationDelta(gctx, t, m, a, outcome)
			return nil
		})
	}
	_ = g.Wait()
	return deltas
}

func (s *Simulator) reputationDelta(ctx context.Context, t airlinesim.TeamState, m airlinesim.MarketState, a Analysis, outcome *airlinesim.ImplementationOutcome) (delta int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("MARKET: Reputation call panicked", "team_id", t.TeamID, "panic", r)
			delta = 0
		}
	}()

	out, err := s.gen.Complete(ctx, ReputationPrompt(t, m, a, outcome))
	if err != nil {
		slog.Warn("MARKET: Reputation assessment unavailable", "team_id", t.TeamID, "error", err)
		return 0
	}
	delta, err = ParseReputationChange(out)
	if err != nil {
		slog.Warn("MARKET: Could not read reputation change", "team_id", t.TeamID, "error", err)
		return 0
	}
	return delta
}
