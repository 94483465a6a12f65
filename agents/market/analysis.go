package market

import "airlinesim"

// Analysis is the competition picture of the whole roster.
type Analysis struct {
	TotalCapacity     int     `json:"total_capacity"`
	TotalRoutes       int     `json:"total_routes"`
	Concentration     float64 `json:"market_concentration"`
	Intensity         float64 `json:"competition_intensity"`
	AverageReputation float64 `json:"average_reputation"`
}

const (
	emptyRosterIntensity  = 0.1
	neutralReputation     = 50.0
	capacityForFullMarket = 20.0
)

// Analyze computes capacity, distinct routes, Herfindahl-Hirschman concentration over the
// current shares, intensity and average reputation.
func Analyze(teams []airlinesim.TeamState) Analysis {
	if len(teams) == 0 {
		return Analysis{
			Intensity:         emptyRosterIntensity,
			AverageReputation: neutralReputation,
		}
	}

	var a Analysis
	routes := make(map[string]struct{})
	var reputation float64
	for _, t := range teams {
		a.TotalCapacity += t.CapacityUnits
		a.Concentration += t.MarketShare * t.MarketShare
		reputation += t.Reputation
		for _, r := range t.Routes {
			routes[r] = struct{}{}
		}
	}
	a.TotalRoutes = len(routes)
	a.Intensity = min(1.0, float64(a.TotalCapacity)/capacityForFullMarket)
	a.AverageReputation = reputation / float64(len(teams))
	return a
}
