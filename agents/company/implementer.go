package company

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"airlinesim"
)

const defaultReputationImpact = 5

// Implementer approves the affordable, feasible subset of a plan and applies it to the team state.
type Implementer struct {
	now func() time.Time
}

func NewImplementer() *Implementer {
	return &Implementer{now: time.Now}
}

// Implement works through the actions cheapest first, ties in submission order. An action is
// approved when it still fits the cash the team had at call time and is feasible against the
// state left by the actions approved before it. It returns the outcome and the new team state;
// persisting that state is up to the caller.
func (im *Implementer) Implement(plan airlinesim.Plan, state airlinesim.TeamState, findings []Finding) (airlinesim.ImplementationOutcome, airlinesim.TeamState) {
	ordered := slices.Clone(plan.Actions)
	slices.SortStableFunc(ordered, func(a, b airlinesim.Action) int {
		return cmp.Compare(a.Cost, b.Cost)
	})

	working := state.Clone()
	outcome := airlinesim.ImplementationOutcome{
		TeamID:   plan.TeamID,
		Approved: []airlinesim.Action{},
		Rejected: []airlinesim.Action{},
		Reason:   strings.Join(Messages(findings), "\n"),
	}

	var cashUsed float64
	for _, a := range ordered {
		if cashUsed+a.Cost > state.Cash || !feasible(a, working) {
			outcome.Rejected = append(outcome.Rejected, a)
			continue
		}
		cashUsed += a.Cost
		apply(a, &working)
		outcome.Approved = append(outcome.Approved, a)
	}

	outcome.CashUsed = cashUsed
	working.Cash = state.Cash - cashUsed
	working.LastUpdated = im.now()
	working.Normalize()
	return outcome, working
}

func feasible(a airlinesim.Action, s airlinesim.TeamState) bool {
	switch a.Type {
	case airlinesim.ActionOpenRoute:
		return s.CapacityUnits > len(s.Routes)
	case airlinesim.ActionMaintenance:
		return s.CapacityUnits > 0
	default:
		return true
	}
}

// apply moves s by exactly the documented delta of one approved action.
func apply(a airlinesim.Action, s *airlinesim.TeamState) {
	switch a.Type {
	case airlinesim.ActionAcquireCapacity:
		if n := a.IntParam("count", 1); n > 0 {
			s.CapacityUnits += n
		}
	case airlinesim.ActionOpenRoute:
		s.AddRoute(a.StringParam("route"))
	case airlinesim.ActionMarketing:
		impact := a.FloatParam("reputation_impact", defaultReputationImpact)
		s.Reputation = min(100, s.Reputation+impact)
	}
}
