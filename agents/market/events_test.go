package market

import (
	"slices"
	"testing"

	"airlinesim"

	"github.com/stretchr/testify/assert"
)

func TestGenerateEvents(t *testing.T) {
	r := NewRandom(42)
	seen := map[string]int{}
	for range 2000 {
		events := GenerateEvents(r.Events)
		assert.LessOrEqual(t, len(events), 3)

		// economic, competitive, operational order
		last := -1
		for _, e := range events {
			idx := slices.IndexFunc(eventCategories, func(c eventCategory) bool { return slices.Contains(c.catalog, e) })
			assert.GreaterOrEqual(t, idx, 0, "event %q is not from a catalog", e)
			assert.Greater(t, idx, last)
			last = idx
			seen[eventCategories[idx].name]++
		}
	}
	// 30%, 25%, 20% of 2000 draws, with generous slack
	assert.InDelta(t, 600, seen["economic"], 120)
	assert.InDelta(t, 500, seen["competitive"], 120)
	assert.InDelta(t, 400, seen["operational"], 120)
}

func TestConditions(t *testing.T) {
	tests := []struct {
		events []string
		want   string
	}{
		{nil, airlinesim.ConditionsStable},
		{[]string{"Tourism boom increases passenger demand by 20%"}, airlinesim.ConditionsGrowing},
		{[]string{"Government introduces new aviation taxes"}, airlinesim.ConditionsDeclining},
		{[]string{"Tourism boom increases passenger demand by 20%", "Air traffic control strikes cause delays"}, airlinesim.ConditionsStable},
		{[]string{"Technology upgrade improves efficiency", "Weather disruptions affect 30% of flights"}, airlinesim.ConditionsGrowing},
		{[]string{"New low-cost carrier enters the market"}, airlinesim.ConditionsStable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Conditions(tt.events), "%v", tt.events)
	}
}
