package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"airlinesim"

	"github.com/google/uuid"
)

// Collections used by the simulation.
const (
	CollectionTeams    = "teams"
	CollectionMarket   = "market"
	CollectionPlans    = "plans"
	CollectionFeedback = "feedback"

	marketKey = "market_state"
)

// Repository gives typed access to the simulation collections on top of any Store.
type Repository struct {
	store Store
	now   func() time.Time
}

func NewRepository(s Store) *Repository {
	return &Repository{store: s, now: time.Now}
}

func (r *Repository) getJSON(ctx context.Context, collection, key string, v any) error {
	b, err := r.store.Get(ctx, collection, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *Repository) putJSON(ctx context.Context, collection, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	return r.store.Put(ctx, collection, key, b)
}

func queryJSON[T any](ctx context.Context, s Store, collection string, q Query) ([]T, error) {
	docs, err := s.Query(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d, &v); err != nil {
			slog.Warn("STORE: Skipping undecodable document", "collection", collection, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// GetTeam returns the team state, or an error wrapping airlinesim.ErrNotFound.
func (r *Repository) GetTeam(ctx context.Context, teamID string) (airlinesim.TeamState, error) {
	var ts airlinesim.TeamState
	if err := r.getJSON(ctx, CollectionTeams, teamID, &ts); err != nil {
		return airlinesim.TeamState{}, fmt.Errorf("team state for %s: %w", teamID, err)
	}
	return ts, nil
}

func (r *Repository) PutTeam(ctx context.Context, ts airlinesim.TeamState) error {
	ts.Normalize()
	return r.putJSON(ctx, CollectionTeams, ts.TeamID, ts)
}

// CommitTeams writes every team state. All states are computed before the first write.
func (r *Repository) CommitTeams(ctx context.Context, teams []airlinesim.TeamState) error {
	var errs []error
	for _, ts := range teams {
		if err := r.PutTeam(ctx, ts); err != nil {
			errs = append(errs, fmt.Errorf("commit team %s: %w", ts.TeamID, err))
		}
	}
	return errors.Join(errs...)
}

// ListTeams returns the full roster ordered by team id.
func (r *Repository) ListTeams(ctx context.Context) ([]airlinesim.TeamState, error) {
	return queryJSON[airlinesim.TeamState](ctx, r.store, CollectionTeams, Query{OrderBy: "team_id"})
}

// RegisterTeam creates the starting state of a new team. It fails if the team already exists.
func (r *Repository) RegisterTeam(ctx context.Context, teamID, name string, cash, reputation float64) (airlinesim.TeamState, error) {
	if _, err := r.GetTeam(ctx, teamID); err == nil {
		return airlinesim.TeamState{}, fmt.Errorf("register team %s: %w", teamID, airlinesim.ErrAlreadyExists)
	} else if !errors.Is(err, airlinesim.ErrNotFound) {
		return airlinesim.TeamState{}, err
	}

	if name == "" {
		name = "Airline " + teamID
	}
	ts := airlinesim.TeamState{
		TeamID:      teamID,
		Name:        name,
		Cash:        cash,
		Routes:      []string{},
		Reputation:  reputation,
		LastUpdated: r.now(),
	}
	if err := r.PutTeam(ctx, ts); err != nil {
		return airlinesim.TeamState{}, err
	}
	slog.Info("STORE: Registered team", "team_id", teamID, "cash", cash)
	return ts, nil
}

// GetMarket returns the stored market, or an error wrapping airlinesim.ErrNotFound.
func (r *Repository) GetMarket(ctx context.Context) (airlinesim.MarketState, error) {
	var ms airlinesim.MarketState
	if err := r.getJSON(ctx, CollectionMarket, marketKey, &ms); err != nil {
		return airlinesim.MarketState{}, fmt.Errorf("market state: %w", err)
	}
	return ms, nil
}

// MarketOrDefault returns the stored market, or the default market when none exists yet.
func (r *Repository) MarketOrDefault(ctx context.Context) (airlinesim.MarketState, error) {
	ms, err := r.GetMarket(ctx)
	if errors.Is(err, airlinesim.ErrNotFound) {
		return airlinesim.DefaultMarketState(r.now()), nil
	}
	return ms, err
}

func (r *Repository) PutMarket(ctx context.Context, ms airlinesim.MarketState) error {
	return r.putJSON(ctx, CollectionMarket, marketKey, ms)
}

// ResetMarket overwrites the market with the default state.
func (r *Repository) ResetMarket(ctx context.Context) (airlinesim.MarketState, error) {
	ms := airlinesim.DefaultMarketState(r.now())
	return ms, r.PutMarket(ctx, ms)
}

// SavePlan stores the plan under Plan.Key; a later submission for the same period overwrites it.
func (r *Repository) SavePlan(ctx context.Context, p airlinesim.Plan) error {
	return r.putJSON(ctx, CollectionPlans, p.Key(), p)
}

func (r *Repository) GetPlan(ctx context.Context, teamID, period string) (airlinesim.Plan, error) {
	var p airlinesim.Plan
	key := airlinesim.Plan{TeamID: teamID, Period: period}.Key()
	if err := r.getJSON(ctx, CollectionPlans, key, &p); err != nil {
		return airlinesim.Plan{}, fmt.Errorf("plan %s: %w", key, err)
	}
	return p, nil
}

// LatestPlan returns the most recently submitted plan of a team.
func (r *Repository) LatestPlan(ctx context.Context, teamID string) (airlinesim.Plan, error) {
	plans, err := queryJSON[airlinesim.Plan](ctx, r.store, CollectionPlans, Query{
		Field:      "team_id",
		Value:      teamID,
		OrderBy:    "submission_timestamp",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return airlinesim.Plan{}, err
	}
	if len(plans) == 0 {
		return airlinesim.Plan{}, fmt.Errorf("plans for %s: %w", teamID, airlinesim.ErrNotFound)
	}
	return plans[0], nil
}

// PlansForPeriod returns every stored plan of one period ordered by team.
func (r *Repository) PlansForPeriod(ctx context.Context, period string) ([]airlinesim.Plan, error) {
	return queryJSON[airlinesim.Plan](ctx, r.store, CollectionPlans, Query{
		Field:   "semester",
		Value:   period,
		OrderBy: "team_id",
	})
}

// AppendFeedback stores feedback under a fresh id. Feedback is never overwritten.
func (r *Repository) AppendFeedback(ctx context.Context, fb *airlinesim.EvaluationFeedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	return r.putJSON(ctx, CollectionFeedback, fb.ID, fb)
}

// FeedbackHistory returns a team's feedback, newest first. limit <= 0 returns everything.
func (r *Repository) FeedbackHistory(ctx context.Context, teamID string, limit int) ([]airlinesim.EvaluationFeedback, error) {
	return queryJSON[airlinesim.EvaluationFeedback](ctx, r.store, CollectionFeedback, Query{
		Field:      "team_id",
		Value:      teamID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	})
}
