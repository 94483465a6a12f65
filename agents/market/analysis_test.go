package market

import (
	"testing"

	"airlinesim"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		teams []airlinesim.TeamState
		want  Analysis
	}{
		{
			name: "empty roster uses defaults",
			want: Analysis{Intensity: 0.1, Concentration: 0, TotalCapacity: 0, AverageReputation: 50},
		},
		{
			name: "routes are counted once across teams",
			teams: []airlinesim.TeamState{
				{CapacityUnits: 3, Routes: []string{"BOS-JFK", "BOS-ORD"}, MarketShare: 0.6, Reputation: 70},
				{CapacityUnits: 1, Routes: []string{"BOS-JFK"}, MarketShare: 0.2, Reputation: 30},
			},
			want: Analysis{TotalCapacity: 4, TotalRoutes: 2, Concentration: 0.4, Intensity: 0.2, AverageReputation: 50},
		},
		{
			name:  "intensity saturates at one",
			teams: []airlinesim.TeamState{{CapacityUnits: 25, Reputation: 80}},
			want:  Analysis{TotalCapacity: 25, Intensity: 1, AverageReputation: 80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.teams)
			assert.Equal(t, tt.want.TotalCapacity, got.TotalCapacity)
			assert.Equal(t, tt.want.TotalRoutes, got.TotalRoutes)
			assert.InDelta(t, tt.want.Concentration, got.Concentration, 1e-9)
			assert.InDelta(t, tt.want.Intensity, got.Intensity, 1e-9)
			assert.InDelta(t, tt.want.AverageReputation, got.AverageReputation, 1e-9)
		})
	}
}

func TestAnalyze_EqualSharesConcentration(t *testing.T) {
	for n := 1; n <= 12; n++ {
		teams := make([]airlinesim.TeamState, n)
		for i := range teams {
			teams[i].MarketShare = 1 / float64(n)
		}
		assert.InDelta(t, 1/float64(n), Analyze(teams).Concentration, 1e-9, "n=%d", n)
	}
}
