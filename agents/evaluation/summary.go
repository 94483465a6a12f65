package evaluation

import "airlinesim"

// TeamSnapshot is one row of the market distribution.
type TeamSnapshot struct {
	MarketShare   float64 `json:"market_share"`
	Reputation    float64 `json:"reputation"`
	CapacityUnits int     `json:"aircraft_count"`
	Cash          float64 `json:"cash"`
}

type ClassAverages struct {
	Reputation  float64 `json:"reputation"`
	MarketShare float64 `json:"market_share"`
}

// Summary is the class-wide view an instructor sees after a run.
type Summary struct {
	Message            string                  `json:"message,omitempty"`
	TotalTeams         int                     `json:"total_teams"`
	MarketDistribution map[string]TeamSnapshot `json:"market_distribution"`
	ClassAverages      ClassAverages           `json:"class_averages"`
}

// InstructorSummary snapshots every team and averages reputation and share across the class.
func InstructorSummary(teams []airlinesim.TeamState) Summary {
	s := Summary{
		TotalTeams:         len(teams),
		MarketDistribution: make(map[string]TeamSnapshot, len(teams)),
	}
	if len(teams) == 0 {
		s.Message = "No airline data available"
		return s
	}

	for _, t := range teams {
		s.MarketDistribution[t.TeamID] = TeamSnapshot{
			MarketShare:   t.MarketShare,
			Reputation:    t.Reputation,
			CapacityUnits: t.CapacityUnits,
			Cash:          t.Cash,
		}
		s.ClassAverages.Reputation += t.Reputation
		s.ClassAverages.MarketShare += t.MarketShare
	}
	n := float64(len(teams))
	s.ClassAverages.Reputation /= n
	s.ClassAverages.MarketShare /= n
	return s
}
