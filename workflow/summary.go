package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"airlinesim"
	"airlinesim/agents/evaluation"
)

func (o *Orchestrator) summarize(ctx context.Context, results map[string]*TeamResult, mo marketOutcome) *BatchSummary {
	roster, err := o.repo.ListTeams(ctx)
	if err != nil {
		slog.Warn("WORKFLOW: Could not load roster for summary, using market result", "error", err)
		roster = mo.Teams
	}

	s := &BatchSummary{
		Summary:        evaluation.InstructorSummary(roster),
		MarketDegraded: mo.degraded,
		MarketError:    errString(mo.err),
	}
	var scored int
	for _, tr := range results {
		if tr.Status == StatusCompleted {
			s.Completed++
		} else {
			s.Failed++
		}
		if tr.Evaluation != nil {
			s.AverageScore += tr.Evaluation.Score
			scored++
		}
	}
	if scored > 0 {
		s.AverageScore /= float64(scored)
	}
	return s
}

func (o *Orchestrator) notify(ctx context.Context, s *BatchSummary) {
	if o.opts.Notifier == nil || s == nil {
		return
	}
	if err := o.opts.Notifier.PostMessage(ctx, o.opts.NotifyChannel, FormatSummary(*s)); err != nil {
		slog.Warn("WORKFLOW: Failed to post summary", "channel", o.opts.NotifyChannel, "error", err)
	}
}

// FormatSummary renders the batch summary as a short chat message.
func FormatSummary(s BatchSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Simulation run finished*: %d teams, %d completed, %d failed, average score %.1f\n",
		s.TotalTeams, s.Completed, s.Failed, s.AverageScore)
	if s.MarketDegraded {
		b.WriteString("Market stage did not run; default market used")
		if s.MarketError != "" {
			fmt.Fprintf(&b, " (%s)", s.MarketError)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Class averages: reputation %.1f, market share %.1f%%\n",
		s.ClassAverages.Reputation, s.ClassAverages.MarketShare*100)

	ids := make([]string, 0, len(s.MarketDistribution))
	for id := range s.MarketDistribution {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		t := s.MarketDistribution[id]
		fmt.Fprintf(&b, "- %s: share %.1f%%, reputation %.0f, aircraft %d, cash %s\n",
			id, t.MarketShare*100, t.Reputation, t.CapacityUnits, airlinesim.FormatMoney(t.Cash))
	}
	return b.String()
}
