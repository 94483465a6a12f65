// Package mock provides a deterministic TextGenerator. It only serves as a stand-in for the
// real service in tests and dry runs; real models are rarely so predictable.
package mock

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Rule answers any prompt containing Match with Response, or fails with Err.
type Rule struct {
	Match    string
	Response string
	Err      error
}

// Generator returns scripted responses. Rules are checked in order; the first match wins.
type Generator struct {
	mu       sync.Mutex
	rules    []Rule
	fallback Rule
	prompts  []string
}

func NewGenerator(rules ...Rule) *Generator {
	return &Generator{rules: rules}
}

// Default sets the answer for prompts no rule matches.
func (g *Generator) Default(response string, err error) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = Rule{Response: response, Err: err}
	return g
}

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	rule := g.fallback
	for _, r := range g.rules {
		if r.Match == "" || strings.Contains(prompt, r.Match) {
			rule = r
			break
		}
	}
	g.mu.Unlock()

	slog.Info("LLM_CLIENT: Mock invoked", "prompt_len", len(prompt), "error", rule.Err)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return rule.Response, rule.Err
}

// Prompts returns every prompt received so far.
func (g *Generator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.prompts))
	copy(out, g.prompts)
	return out
}

// Offline answers every kind of prompt the simulation sends with a plausible canned response.
func Offline() *Generator {
	return NewGenerator(
		Rule{Match: "reputation_change", Response: `{"reputation_change": 1, "performance_rating": "average", "key_factors": ["steady operations"]}`},
		Rule{Match: "EVALUATION CRITERIA", Response: `{"score": 72, "feedback_text": "Offline evaluation: the plan is coherent but leaves budget unused.", "strengths": ["Plan coherence"], "improvement_areas": ["Budget utilization"]}`},
	).Default("Offline assessment: the plan looks coherent; watch budget and capacity risks.", nil)
}
