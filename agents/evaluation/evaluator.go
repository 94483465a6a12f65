package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"airlinesim"
)

type feedbackRepository interface {
	AppendFeedback(ctx context.Context, fb *airlinesim.EvaluationFeedback) error
}

// Evaluator scores one team's period.
type Evaluator struct {
	gen     airlinesim.TextGenerator
	history feedbackRepository
	now     func() time.Time
}

// NewEvaluator creates an evaluator. history may be nil, in which case feedback is not stored.
func NewEvaluator(gen airlinesim.TextGenerator, history feedbackRepository) *Evaluator {
	return &Evaluator{gen: gen, history: history, now: time.Now}
}

// Evaluate always returns usable feedback. When the service fails or its answer cannot be
// used at all, the deterministic formula scores the team. The error is non-nil only when the
// context ended or the feedback could not be stored; the returned feedback is valid either way.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (airlinesim.EvaluationFeedback, error) {
	start := time.Now()
	a := e.assess(ctx, in)

	fb := airlinesim.EvaluationFeedback{
		TeamID:           in.Plan.TeamID,
		Period:           in.Plan.Period,
		Score:            a.Score,
		FeedbackText:     a.FeedbackText,
		Strengths:        a.Strengths,
		ImprovementAreas: a.ImprovementAreas,
		Source:           a.Source,
		CreatedAt:        e.now(),
	}

	slog.Info("EVALUATION: Team scored",
		"team_id", fb.TeamID,
		"score", fb.Score,
		"source", fb.Source,
		"duration", time.Since(start),
	)

	var errs []error
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if e.history != nil {
		if err := e.history.AppendFeedback(ctx, &fb); err != nil {
			slog.Warn("EVALUATION: Failed to store feedback", "team_id", fb.TeamID, "error", err)
			errs = append(errs, fmt.Errorf("store feedback for %s: %w", fb.TeamID, err))
		}
	}
	return fb, errors.Join(errs...)
}

func (e *Evaluator) assess(ctx context.Context, in Input) (a Assessment) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("EVALUATION: Assessment panicked, using fallback", "team_id", in.Plan.TeamID, "panic", r)
			a = Fallback(MetricsFor(in.Plan, in.Outcome))
		}
	}()

	if e.gen == nil {
		return Fallback(MetricsFor(in.Plan, in.Outcome))
	}

	out, err := e.gen.Complete(ctx, Prompt(in))
	if err != nil {
		slog.Warn("EVALUATION: Service unavailable, using fallback", "team_id", in.Plan.TeamID, "error", err)
		return Fallback(MetricsFor(in.Plan, in.Outcome))
	}

	a, err = ParseStructured(out)
	if err != nil {
		slog.Info("EVALUATION: Structured parse failed, scanning text", "team_id", in.Plan.TeamID, "error", err)
		return ParseText(out)
	}
	return a
}
