package airlinesim

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"slices"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TextGenerator is the text-generation service. Its output is untrusted free text.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TextGeneratorFunc adapts a plain function to a TextGenerator.
type TextGeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f TextGeneratorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Notifier posts a message to a chat channel.
type Notifier interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// ActionType enumerates what a plan action does.
type ActionType string

const (
	ActionAcquireCapacity   ActionType = "purchase_aircraft"
	ActionOpenRoute         ActionType = "add_route"
	ActionIncreaseFrequency ActionType = "increase_frequency"
	ActionMarketing         ActionType = "marketing_campaign"
	ActionStaffTraining     ActionType = "staff_training"
	ActionMaintenance       ActionType = "maintenance_upgrade"
)

var knownActionTypes = []ActionType{
	ActionAcquireCapacity,
	ActionOpenRoute,
	ActionIncreaseFrequency,
	ActionMarketing,
	ActionStaffTraining,
	ActionMaintenance,
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	return slices.Contains(knownActionTypes, t)
}

// NeedsCapacity reports whether the action ties up a capacity unit.
func (t ActionType) NeedsCapacity() bool {
	return t == ActionOpenRoute || t == ActionIncreaseFrequency
}

// Action is a single proposed allocation in a plan.
type Action struct {
	Type        ActionType     `json:"action_type" yaml:"action_type"`
	Description string         `json:"description" yaml:"description"`
	Cost        float64        `json:"cost" yaml:"cost"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// IntParam returns the named parameter as an int, or def when it is missing or not numeric.
func (a Action) IntParam(name string, def int) int {
	switch v := a.Parameters[name].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return def
}

// FloatParam returns the named parameter as a float64, or def when it is missing or not numeric.
func (a Action) FloatParam(name string, def float64) float64 {
	switch v := a.Parameters[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// StringParam returns the named parameter as a string, or "" when it is missing.
func (a Action) StringParam(name string) string {
	s, _ := a.Parameters[name].(string)
	return s
}

// Plan is one team's submission for one period.
type Plan struct {
	TeamID      string    `json:"team_id" yaml:"team_id"`
	Period      string    `json:"semester" yaml:"semester"`
	Actions     []Action  `json:"actions" yaml:"actions"`
	TotalBudget float64   `json:"total_budget" yaml:"total_budget"`
	SubmittedAt time.Time `json:"submission_timestamp" yaml:"submission_timestamp"`
}

// Key is the document key of the plan in the plans collection. Both parts are escaped so
// distinct (team, period) pairs never share a key.
func (p Plan) Key() string {
	return url.PathEscape(p.TeamID) + "/" + url.PathEscape(p.Period)
}

// TotalCost sums the cost of every proposed action.
func (p Plan) TotalCost() float64 {
	var total float64
	for _, a := range p.Actions {
		total += a.Cost
	}
	return total
}

// Validate checks the submission format. It does not check the plan against any team state.
func (p Plan) Validate() error {
	if p.TeamID == "" {
		return fmt.Errorf("%w: missing team id", ErrInvalidPlan)
	}
	if p.TotalBudget < 0 {
		return fmt.Errorf("%w: team %s: negative total budget", ErrInvalidPlan, p.TeamID)
	}
	for i, a := range p.Actions {
		if !a.Type.Valid() {
			return fmt.Errorf("%w: team %s: action %d has unknown type %q", ErrInvalidPlan, p.TeamID, i+1, a.Type)
		}
		if a.Cost < 0 || math.IsNaN(a.Cost) || math.IsInf(a.Cost, 0) {
			return fmt.Errorf("%w: team %s: action %d has invalid cost %v", ErrInvalidPlan, p.TeamID, i+1, a.Cost)
		}
	}
	return nil
}

// TeamState is the durable account of a team's position.
type TeamState struct {
	TeamID        string    `json:"team_id" yaml:"team_id"`
	Name          string    `json:"name" yaml:"name"`
	Cash          float64   `json:"cash" yaml:"cash"`
	CapacityUnits int       `json:"aircraft_count" yaml:"aircraft_count"`
	Routes        []string  `json:"routes" yaml:"routes"`
	MarketShare   float64   `json:"market_share" yaml:"market_share"`
	Reputation    float64   `json:"reputation" yaml:"reputation"`
	LastUpdated   time.Time `json:"last_updated" yaml:"last_updated"`
}

// Clone returns a deep copy.
func (s TeamState) Clone() TeamState {
	s.Routes = slices.Clone(s.Routes)
	if s.Routes == nil {
		s.Routes = []string{}
	}
	return s
}

// HasRoute reports whether the route is already active.
func (s TeamState) HasRoute(route string) bool {
	return slices.Contains(s.Routes, route)
}

// AddRoute activates a route. Returns false if it was already active or empty.
func (s *TeamState) AddRoute(route string) bool {
	if route == "" || s.HasRoute(route) {
		return false
	}
	s.Routes = append(s.Routes, route)
	return true
}

// Normalize clamps share and reputation into range and removes duplicate routes.
func (s *TeamState) Normalize() {
	s.MarketShare = Clamp(s.MarketShare, 0, 1)
	s.Reputation = Clamp(s.Reputation, 0, 100)
	seen := make(map[string]bool, len(s.Routes))
	routes := make([]string, 0, len(s.Routes))
	for _, r := range s.Routes {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		routes = append(routes, r)
	}
	s.Routes = routes
}

// MarketState is the singleton shared market record.
type MarketState struct {
	TotalPassengers    int64     `json:"total_passengers"`
	CompetitionLevel   float64   `json:"competition_level"`
	EconomicConditions string    `json:"economic_conditions"`
	Events             []string  `json:"events"`
	LastUpdated        time.Time `json:"last_updated"`
}

const (
	DefaultTotalPassengers  = 1_000_000
	DefaultCompetitionLevel = 0.5
	ConditionsStable        = "stable"
	ConditionsGrowing       = "growing"
	ConditionsDeclining     = "declining"
)

// DefaultMarketState is the market used when none has been stored yet.
func DefaultMarketState(now time.Time) MarketState {
	return MarketState{
		TotalPassengers:    DefaultTotalPassengers,
		CompetitionLevel:   DefaultCompetitionLevel,
		EconomicConditions: ConditionsStable,
		Events:             []string{},
		LastUpdated:        now,
	}
}

// ImplementationOutcome is what the plan implementer did with one plan.
type ImplementationOutcome struct {
	TeamID   string   `json:"team_id"`
	Approved []Action `json:"approved_actions"`
	Rejected []Action `json:"rejected_actions"`
	CashUsed float64  `json:"cash_used"`
	Reason   string   `json:"reasoning"`
}

// ApprovalRate is approved over total actions, 0 when there were no actions.
func (o ImplementationOutcome) ApprovalRate() float64 {
	total := len(o.Approved) + len(o.Rejected)
	if total == 0 {
		return 0
	}
	return float64(len(o.Approved)) / float64(total)
}

// EvaluationFeedback is the scored assessment of one team for one run.
type EvaluationFeedback struct {
	ID               string    `json:"id"`
	TeamID           string    `json:"team_id"`
	Period           string    `json:"semester,omitempty"`
	Score            float64   `json:"score"`
	FeedbackText     string    `json:"feedback_text"`
	Strengths        []string  `json:"strengths"`
	ImprovementAreas []string  `json:"improvement_areas"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"created_at"`
}

// Feedback sources.
const (
	SourceStructured = "structured"
	SourceText       = "text"
	SourceFallback   = "fallback"
)

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
