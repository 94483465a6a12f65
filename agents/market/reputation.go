package market

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"airlinesim"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const maxReputationChange = 5

var reputationChangeRe = regexp.MustCompile(`"reputation_change":\s*(-?\d+)`)

// ReputationSchema describes the structured answer the reputation prompt asks for.
func ReputationSchema() *jsonschema.Schema {
	lo, hi := float64(-maxReputationChange), float64(maxReputationChange)
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"reputation_change": {
				Type:        "integer",
				Minimum:     &lo,
				Maximum:     &hi,
				Description: "reputation points gained or lost this period",
			},
			"performance_rating": {
				Type: "string",
				Enum: []any{"poor", "average", "good", "excellent"},
			},
			"key_factors": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"reputation_change"},
	}
}

// ReputationPrompt asks for a reputation adjustment given the team's and market's current figures.
func ReputationPrompt(team airlinesim.TeamState, market airlinesim.MarketState, a Analysis, outcome *airlinesim.ImplementationOutcome) string {
	var b strings.Builder
	b.WriteString("Evaluate this airline's market performance.\n\n")
	fmt.Fprintf(&b, "Airline: %s\n", team.Name)
	fmt.Fprintf(&b, "- Aircraft: %d\n", team.CapacityUnits)
	fmt.Fprintf(&b, "- Routes: %d\n", len(team.Routes))
	fmt.Fprintf(&b, "- Market Share: %.2f%%\n", team.MarketShare*100)
	fmt.Fprintf(&b, "- Reputation: %.0f/100\n", team.Reputation)
	fmt.Fprintf(&b, "- Cash: %s\n", airlinesim.FormatMoney(team.Cash))
	if outcome != nil {
		fmt.Fprintf(&b, "- This period: %d actions approved, %d rejected, %s spent\n",
			len(outcome.Approved), len(outcome.Rejected), airlinesim.FormatMoney(outcome.CashUsed))
	}

	b.WriteString("\nMarket Conditions:\n")
	fmt.Fprintf(&b, "- Total Passengers: %s\n", airlinesim.FormatCount(market.TotalPassengers))
	fmt.Fprintf(&b, "- Competition Level: %.2f\n", market.CompetitionLevel)
	fmt.Fprintf(&b, "- Economic Conditions: %s\n", market.EconomicConditions)
	if len(market.Events) == 0 {
		b.WriteString("- Recent Events: none\n")
	} else {
		fmt.Fprintf(&b, "- Recent Events: %s\n", strings.Join(market.Events, "; "))
	}

	b.WriteString("\nMarket Analysis:\n")
	fmt.Fprintf(&b, "- Competition Intensity: %.2f\n", a.Intensity)
	fmt.Fprintf(&b, "- Average Reputation: %.1f\n\n", a.AverageReputation)

	b.WriteString(`Provide a JSON response with "reputation_change" between -5 and +5, "performance_rating" and "key_factors".`)
	if schema, err := json.MarshalIndent(ReputationSchema(), "", "  "); err == nil {
		b.WriteString("\nJSON Schema:\n")
		b.Write(schema)
	}
	b.WriteString("\n")
	return b.String()
}

// ParseReputationChange extracts the reputation_change integer from free text, clamped to [-5, 5].
func ParseReputationChange(text string) (int, error) {
	m := reputationChangeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("%w: no reputation_change in response", airlinesim.ErrMalformedResponse)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: reputation_change %q: %v", airlinesim.ErrMalformedResponse, m[1], err)
	}
	return max(-maxReputationChange, min(maxReputationChange, n)), nil
}
