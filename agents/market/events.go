package market

import (
	"math/rand/v2"
	"strings"

	"airlinesim"
)

type eventCategory struct {
	name        string
	probability float64
	catalog     []string
}

// Categories are drawn in this order, so events always list economic first.
var eventCategories = []eventCategory{
	{
		name:        "economic",
		probability: 0.30,
		catalog: []string{
			"Fuel prices increased by 15% due to geopolitical tensions",
			"Tourism boom increases passenger demand by 20%",
			"Economic recession reduces business travel by 25%",
			"New airport opens, creating expansion opportunities",
			"Government introduces new aviation taxes",
		},
	},
	{
		name:        "competitive",
		probability: 0.25,
		catalog: []string{
			"New low-cost carrier enters the market",
			"Major competitor files for bankruptcy",
			"International airline alliance forms",
			"Price war initiated by market leader",
			"New regulatory restrictions on routes",
		},
	},
	{
		name:        "operational",
		probability: 0.20,
		catalog: []string{
			"Air traffic control strikes cause delays",
			"Weather disruptions affect 30% of flights",
			"New safety regulations require aircraft modifications",
			"Pilot shortage affects industry capacity",
			"Technology upgrade improves efficiency",
		},
	},
}

// GenerateEvents draws at most one event per category.
func GenerateEvents(r *rand.Rand) []string {
	events := []string{}
	for _, c := range eventCategories {
		if r.Float64() < c.probability {
			events = append(events, c.catalog[r.IntN(len(c.catalog))])
		}
	}
	return events
}

var (
	negativeKeywords = []string{"recession", "crisis", "strike", "disruption", "tax"}
	positiveKeywords = []string{"boom", "growth", "opportunity", "efficiency", "upgrade"}
)

// Conditions labels the economy by counting keyword hits across the events.
func Conditions(events []string) string {
	var pos, neg int
	for _, e := range events {
		e = strings.ToLower(e)
		for _, k := range negativeKeywords {
			if strings.Contains(e, k) {
				neg++
			}
		}
		for _, k := range positiveKeywords {
			if strings.Contains(e, k) {
				pos++
			}
		}
	}
	switch {
	case pos > neg:
		return airlinesim.ConditionsGrowing
	case neg > pos:
		return airlinesim.ConditionsDeclining
	default:
		return airlinesim.ConditionsStable
	}
}
