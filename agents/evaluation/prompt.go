package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"

	"airlinesim"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Input is everything the evaluator looks at for one team.
type Input struct {
	Plan    airlinesim.Plan
	Outcome airlinesim.ImplementationOutcome
	Team    airlinesim.TeamState
	Market  airlinesim.MarketState
}

// ResponseSchema describes the structured evaluation the prompt asks for.
func ResponseSchema() *jsonschema.Schema {
	zero, hundred, ten := 0.0, 100.0, 10.0
	subScore := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "integer", Minimum: &zero, Maximum: &ten, Description: desc}
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"score": {
				Type:    "integer",
				Minimum: &zero,
				Maximum: &hundred,
			},
			"feedback_text": {
				Type:        "string",
				Description: "detailed paragraph explaining performance",
			},
			"strengths": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"improvement_areas": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"strategic_assessment": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"planning_quality":      subScore("strategic coherence"),
					"resource_allocation":   subScore("resource management"),
					"market_awareness":      subScore("market awareness"),
					"execution_feasibility": subScore("implementation feasibility"),
				},
			},
			"recommendations": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"score", "feedback_text", "strengths", "improvement_areas"},
	}
}

// Prompt builds the evaluation request for one team.
func Prompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are an expert business strategy evaluator for an airline simulation game.\n")
	b.WriteString("Provide comprehensive feedback on a student team's strategic implementation.\n\n")

	b.WriteString("TEAM SUBMISSION:\n")
	fmt.Fprintf(&b, "Team: %s\n", in.Plan.TeamID)
	fmt.Fprintf(&b, "Semester: %s\n", in.Plan.Period)
	fmt.Fprintf(&b, "Proposed Budget: %s\n\n", airlinesim.FormatMoney(in.Plan.TotalBudget))

	b.WriteString("PROPOSED ACTIONS:\n")
	for i, a := range in.Plan.Actions {
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n", i+1, a.Type, a.Description, airlinesim.FormatMoney(a.Cost))
	}

	b.WriteString("\nIMPLEMENTATION RESULTS:\n")
	fmt.Fprintf(&b, "Approved Actions: %d\n", len(in.Outcome.Approved))
	fmt.Fprintf(&b, "Rejected Actions: %d\n", len(in.Outcome.Rejected))
	fmt.Fprintf(&b, "Cash Used: %s\n", airlinesim.FormatMoney(in.Outcome.CashUsed))
	if in.Outcome.Reason != "" {
		fmt.Fprintf(&b, "Reasoning: %s\n", in.Outcome.Reason)
	}

	b.WriteString("\nCURRENT AIRLINE STATE:\n")
	fmt.Fprintf(&b, "- Cash Available: %s\n", airlinesim.FormatMoney(in.Team.Cash))
	fmt.Fprintf(&b, "- Aircraft Fleet: %d\n", in.Team.CapacityUnits)
	fmt.Fprintf(&b, "- Active Routes: %d%s\n", len(in.Team.Routes), routePreview(in.Team.Routes))
	fmt.Fprintf(&b, "- Market Share: %.2f%%\n", in.Team.MarketShare*100)
	fmt.Fprintf(&b, "- Reputation: %.0f/100\n", in.Team.Reputation)

	b.WriteString("\nMARKET CONDITIONS:\n")
	fmt.Fprintf(&b, "- Economic Conditions: %s\n", in.Market.EconomicConditions)
	fmt.Fprintf(&b, "- Competition Level: %.2f\n", in.Market.CompetitionLevel)
	fmt.Fprintf(&b, "- Total Passengers: %s\n", airlinesim.FormatCount(in.Market.TotalPassengers))
	if len(in.Market.Events) > 0 {
		fmt.Fprintf(&b, "- Recent Events: %s\n", strings.Join(in.Market.Events, ", "))
	} else {
		b.WriteString("- Recent Events: none\n")
	}

	b.WriteString("\nReturn ONLY a JSON object matching this JSON Schema:\n")
	if schema, err := json.MarshalIndent(ResponseSchema(), "", "  "); err == nil {
		b.Write(schema)
		b.WriteString("\n")
	}

	b.WriteString(`
EVALUATION CRITERIA:
1. Strategic Coherence (25%): Do actions align with the airline's situation and market conditions?
2. Resource Management (25%): Efficient use of budget and assets?
3. Market Awareness (25%): Understanding of competitive landscape and opportunities?
4. Implementation Feasibility (25%): Realistic and executable plans?

Be constructive, specific, and educational. This is formative feedback for student learning.
`)
	return b.String()
}

func routePreview(routes []string) string {
	switch {
	case len(routes) == 0:
		return ""
	case len(routes) <= 3:
		return " (" + strings.Join(routes, ", ") + ")"
	default:
		return " (" + strings.Join(routes[:3], ", ") + ", ...)"
	}
}
