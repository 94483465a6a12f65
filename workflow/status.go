package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"airlinesim"
)

// TeamSummary is one team's row in the simulation status.
type TeamSummary struct {
	TeamID        string  `json:"team_id"`
	Name          string  `json:"name"`
	Cash          float64 `json:"cash"`
	CapacityUnits int     `json:"aircraft_count"`
	Routes        int     `json:"routes"`
	MarketShare   float64 `json:"market_share"`
	Reputation    float64 `json:"reputation"`
}

// TopPerformers names the leading team on each measure. Empty when there are no teams.
type TopPerformers struct {
	MarketLeader      string `json:"market_leader,omitempty"`
	HighestReputation string `json:"highest_reputation,omitempty"`
	MostCash          string `json:"most_cash,omitempty"`
}

// SimulationStatus is a point-in-time view of the whole simulation.
type SimulationStatus struct {
	Timestamp     time.Time              `json:"timestamp"`
	TotalTeams    int                    `json:"total_teams"`
	Market        airlinesim.MarketState `json:"market_state"`
	Teams         []TeamSummary          `json:"team_summaries"`
	TopPerformers TopPerformers          `json:"top_performers"`
}

// Status reads the current market and roster.
func (o *Orchestrator) Status(ctx context.Context) (SimulationStatus, error) {
	ms, err := o.repo.MarketOrDefault(ctx)
	if err != nil {
		return SimulationStatus{}, fmt.Errorf("simulation status: %w", err)
	}
	teams, err := o.repo.ListTeams(ctx)
	if err != nil {
		return SimulationStatus{}, fmt.Errorf("simulation status: %w", err)
	}

	st := SimulationStatus{
		Timestamp:  o.now(),
		TotalTeams: len(teams),
		Market:     ms,
		Teams:      make([]TeamSummary, 0, len(teams)),
	}
	for _, t := range teams {
		st.Teams = append(st.Teams, TeamSummary{
			TeamID:        t.TeamID,
			Name:          t.Name,
			Cash:          t.Cash,
			CapacityUnits: t.CapacityUnits,
			Routes:        len(t.Routes),
			MarketShare:   t.MarketShare,
			Reputation:    t.Reputation,
		})
	}
	st.TopPerformers = topPerformers(teams)
	return st, nil
}

// topPerformers keeps the first team in roster order on ties.
func topPerformers(teams []airlinesim.TeamState) TopPerformers {
	if len(teams) == 0 {
		return TopPerformers{}
	}
	share, rep, cash := teams[0], teams[0], teams[0]
	for _, t := range teams[1:] {
		if t.MarketShare > share.MarketShare {
			share = t
		}
		if t.Reputation > rep.Reputation {
			rep = t
		}
		if t.Cash > cash.Cash {
			cash = t
		}
	}
	return TopPerformers{MarketLeader: share.TeamID, HighestReputation: rep.TeamID, MostCash: cash.TeamID}
}

// Reset puts the market back to its default state. Team states are left alone.
func (o *Orchestrator) Reset(ctx context.Context) (airlinesim.MarketState, error) {
	ms, err := o.repo.ResetMarket(ctx)
	if err != nil {
		return airlinesim.MarketState{}, fmt.Errorf("reset simulation: %w", err)
	}
	slog.Info("WORKFLOW: Market reset", "total_passengers", ms.TotalPassengers)
	return ms, nil
}
