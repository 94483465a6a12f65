package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"airlinesim"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository() *Repository {
	r := NewRepository(NewMemoryStore())
	r.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRepository_Teams(t *testing.T) {
	r := newTestRepository()
	ctx := context.Background()

	_, err := r.GetTeam(ctx, "alpha")
	assert.ErrorIs(t, err, airlinesim.ErrNotFound)

	ts, err := r.RegisterTeam(ctx, "alpha", "", 1_000_000, 50)
	require.NoError(t, err)
	assert.Equal(t, "Airline alpha", ts.Name)
	assert.Equal(t, 0, ts.CapacityUnits)
	assert.Empty(t, ts.Routes)

	_, err = r.RegisterTeam(ctx, "alpha", "Again", 1, 1)
	assert.ErrorIs(t, err, airlinesim.ErrAlreadyExists)

	ts.Routes = []string{"BOS-JFK", "BOS-JFK", ""}
	ts.Reputation = 140
	ts.MarketShare = -0.2
	require.NoError(t, r.PutTeam(ctx, ts))

	got, err := r.GetTeam(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"BOS-JFK"}, got.Routes)
	assert.Equal(t, 100.0, got.Reputation)
	assert.Equal(t, 0.0, got.MarketShare)

	_, err = r.RegisterTeam(ctx, "bravo", "Bravo Air", 500, 60)
	require.NoError(t, err)

	all, err := r.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].TeamID)
	assert.Equal(t, "bravo", all[1].TeamID)
}

func TestRepository_Market(t *testing.T) {
	r := newTestRepository()
	ctx := context.Background()

	_, err := r.GetMarket(ctx)
	assert.ErrorIs(t, err, airlinesim.ErrNotFound)

	ms, err := r.MarketOrDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(airlinesim.DefaultTotalPassengers), ms.TotalPassengers)
	assert.Equal(t, airlinesim.ConditionsStable, ms.EconomicConditions)

	ms.TotalPassengers = 1_200_000
	ms.Events = []string{"Tourism boom"}
	require.NoError(t, r.PutMarket(ctx, ms))

	got, err := r.MarketOrDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_200_000), got.TotalPassengers)

	reset, err := r.ResetMarket(ctx)
	require.NoError(t, err)
	assert.Empty(t, reset.Events)
	got, err = r.GetMarket(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(airlinesim.DefaultTotalPassengers), got.TotalPassengers)
}

func TestRepository_Plans(t *testing.T) {
	r := newTestRepository()
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "alpha", Period: "F25", TotalBudget: 1, SubmittedAt: base}))
	require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "alpha", Period: "F25", TotalBudget: 2, SubmittedAt: base.Add(time.Hour)}))
	require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "alpha", Period: "S26", TotalBudget: 3, SubmittedAt: base.Add(48 * time.Hour)}))
	require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "bravo", Period: "F25", TotalBudget: 4, SubmittedAt: base}))

	p, err := r.GetPlan(ctx, "alpha", "F25")
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.TotalBudget, "later submission for the same period overwrites")

	latest, err := r.LatestPlan(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "S26", latest.Period)

	_, err = r.LatestPlan(ctx, "zulu")
	assert.ErrorIs(t, err, airlinesim.ErrNotFound)

	period, err := r.PlansForPeriod(ctx, "F25")
	require.NoError(t, err)
	require.Len(t, period, 2)
	assert.Equal(t, "alpha", period[0].TeamID)
	assert.Equal(t, "bravo", period[1].TeamID)
}

func TestRepository_Feedback(t *testing.T) {
	r := newTestRepository()
	ctx := context.Background()
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	for i, score := range []float64{60, 70, 80} {
		fb := &airlinesim.EvaluationFeedback{TeamID: "alpha", Score: score, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, r.AppendFeedback(ctx, fb))
		assert.NotEmpty(t, fb.ID)
	}
	require.NoError(t, r.AppendFeedback(ctx, &airlinesim.EvaluationFeedback{TeamID: "bravo", Score: 10, CreatedAt: base}))

	history, err := r.FeedbackHistory(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, history, 3, "feedback is appended, never overwritten")
	assert.Equal(t, []float64{80, 70, 60}, []float64{history[0].Score, history[1].Score, history[2].Score})

	limited, err := r.FeedbackHistory(ctx, "alpha", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, 80.0, limited[0].Score)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string, string) ([]byte, error)    { return nil, f.err }
func (f failingStore) Put(context.Context, string, string, []byte) error      { return f.err }
func (f failingStore) Query(context.Context, string, Query) ([][]byte, error) { return nil, f.err }

func TestRepository_StoreFailures(t *testing.T) {
	boom := errors.New("store offline")
	r := NewRepository(failingStore{err: boom})
	ctx := context.Background()

	_, err := r.MarketOrDefault(ctx)
	assert.ErrorIs(t, err, boom, "only a missing market falls back to the default")

	_, err = r.RegisterTeam(ctx, "alpha", "", 1, 1)
	assert.ErrorIs(t, err, boom)

	err = r.CommitTeams(ctx, []airlinesim.TeamState{{TeamID: "a"}, {TeamID: "b"}})
	assert.ErrorIs(t, err, boom)
}

func TestRepository_PlanKeysDoNotCollide(t *testing.T) {
	backends := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(t.TempDir()),
	}
	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			r := NewRepository(s)
			ctx := context.Background()

			require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "a_b", Period: "c", TotalBudget: 1}))
			require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "a", Period: "b_c", TotalBudget: 2}))
			require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "a/b", Period: "c", TotalBudget: 3}))
			require.NoError(t, r.SavePlan(ctx, airlinesim.Plan{TeamID: "a", Period: "b/c", TotalBudget: 4}))

			tests := []struct {
				team, period string
				budget       float64
			}{
				{"a_b", "c", 1},
				{"a", "b_c", 2},
				{"a/b", "c", 3},
				{"a", "b/c", 4},
			}
			for _, tt := range tests {
				p, err := r.GetPlan(ctx, tt.team, tt.period)
				require.NoError(t, err)
				assert.Equal(t, tt.team, p.TeamID)
				assert.Equal(t, tt.period, p.Period)
				assert.Equal(t, tt.budget, p.TotalBudget)
			}

			period, err := r.PlansForPeriod(ctx, "c")
			require.NoError(t, err)
			assert.Len(t, period, 2)
		})
	}
}

func TestRepository_ListTeamsIncludesDotPrefixedIDs(t *testing.T) {
	r := NewRepository(NewFileStore(t.TempDir()))
	ctx := context.Background()

	_, err := r.RegisterTeam(ctx, ".alpha", "", 1_000_000, 50)
	require.NoError(t, err)
	_, err = r.RegisterTeam(ctx, "bravo", "", 1_000_000, 50)
	require.NoError(t, err)

	_, err = r.GetTeam(ctx, ".alpha")
	require.NoError(t, err)

	teams, err := r.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, ".alpha", teams[0].TeamID)
	assert.Equal(t, "bravo", teams[1].TeamID)
}
