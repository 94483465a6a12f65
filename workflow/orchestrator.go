package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"airlinesim"
	"airlinesim/agents/company"
	"airlinesim/agents/evaluation"
	"airlinesim/agents/market"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Options configures an Orchestrator. Every collaborator is optional.
type Options struct {
	Workers       int
	Reporter      airlinesim.Reporter
	StageLogger   airlinesim.StageLogger
	Notifier      airlinesim.Notifier
	NotifyChannel string
}

// Orchestrator drives a batch of plans through the company, market and evaluation stages.
type Orchestrator struct {
	company    CompanyStage
	market     MarketStage
	evaluation EvaluationStage
	repo       repository
	opts       Options
	now        func() time.Time
}

func New(companyStage CompanyStage, marketStage MarketStage, evaluationStage EvaluationStage, repo repository, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.StageLogger == nil {
		opts.StageLogger = airlinesim.NewNoOpStageLogger()
	}
	return &Orchestrator{
		company:    companyStage,
		market:     marketStage,
		evaluation: evaluationStage,
		repo:       repo,
		opts:       opts,
		now:        time.Now,
	}
}

// Process runs one batch. It never returns a Go error: a batch that cannot run at all is
// reported in BatchResult.Error, and every per-team failure is recorded in that team's entry.
func (o *Orchestrator) Process(ctx context.Context, plans []airlinesim.Plan) BatchResult {
	start := o.now()
	res := BatchResult{Teams: map[string]*TeamResult{}, StartedAt: start}
	slog.Info("WORKFLOW: Starting batch", "plans", len(plans), "workers", o.opts.Workers)

	if len(plans) == 0 {
		res.Error = airlinesim.ErrEmptyBatch.Error()
		o.report(ctx, airlinesim.Event{Name: "workflow.batch", Status: "failed", Err: airlinesim.ErrEmptyBatch})
		return res
	}

	teams := o.receive(ctx, plans, res.Teams)
	if len(teams) == 0 {
		err := fmt.Errorf("%w: every submitted plan is invalid", airlinesim.ErrInvalidPlan)
		res.Error = err.Error()
		o.report(ctx, airlinesim.Event{Name: "workflow.batch", Status: "failed", Err: err})
		return res
	}

	o.runCompany(ctx, teams)
	marketRes := o.runMarket(ctx, teams)
	res.Market = &marketRes.Result
	o.runEvaluation(ctx, teams, marketRes.Result)

	res.Summary = o.summarize(ctx, res.Teams, marketRes)
	res.Duration = o.now().Sub(start)
	o.notify(ctx, res.Summary)

	slog.Info("WORKFLOW: Batch finished",
		"teams", len(res.Teams),
		"completed", res.Summary.Completed,
		"failed", res.Summary.Failed,
		"market_degraded", res.Summary.MarketDegraded,
		"duration", res.Duration,
	)
	o.report(ctx, airlinesim.Event{
		Name:     "workflow.batch",
		Status:   "completed",
		Duration: res.Duration,
		Attrs:    map[string]any{"teams": len(res.Teams), "failed": res.Summary.Failed},
	})
	return res
}

// ProcessOne runs a single plan through the whole pipeline.
func (o *Orchestrator) ProcessOne(ctx context.Context, plan airlinesim.Plan) (*TeamResult, error) {
	res := o.Process(ctx, []airlinesim.Plan{plan})
	if res.Error != "" {
		return nil, errors.New(res.Error)
	}
	for _, tr := range res.Teams {
		return tr, nil
	}
	return nil, airlinesim.ErrEmptyBatch
}

// ProcessPeriod runs every stored plan of one period.
func (o *Orchestrator) ProcessPeriod(ctx context.Context, period string) (BatchResult, error) {
	plans, err := o.repo.PlansForPeriod(ctx, period)
	if err != nil {
		return BatchResult{}, fmt.Errorf("load plans for %s: %w", period, err)
	}
	slog.Info("WORKFLOW: Loaded stored plans", "semester", period, "plans", len(plans))
	return o.Process(ctx, plans), nil
}

// receive validates the plans and registers one entry per team. Invalid plans become
// company_failed entries; for a team submitting twice the last plan wins.
func (o *Orchestrator) receive(ctx context.Context, plans []airlinesim.Plan, entries map[string]*TeamResult) []*TeamResult {
	var order []string
	for i, p := range plans {
		key := p.TeamID
		if key == "" {
			key = "#" + strconv.Itoa(i+1)
		}
		if _, dup := entries[key]; dup {
			slog.Warn("WORKFLOW: Duplicate plan, keeping the later one", "team_id", key)
		} else {
			order = append(order, key)
		}

		tr := &TeamResult{TeamID: p.TeamID, Status: StatusReceived, plan: p}
		entries[key] = tr
		o.transition(ctx, tr, StatusReceived, 0, nil)
		if err := p.Validate(); err != nil {
			o.fail(ctx, tr, StatusCompanyFailed, 0, err)
		}
	}

	var teams []*TeamResult
	for _, key := range order {
		if tr := entries[key]; tr.Status == StatusReceived {
			teams = append(teams, tr)
		}
	}
	return teams
}

func (o *Orchestrator) runCompany(ctx context.Context, teams []*TeamResult) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for _, tr := range teams {
		g.Go(func() error {
			start := time.Now()
			cr, err := o.safeCompany(gctx, tr.plan)
			if err != nil {
				o.fail(gctx, tr, StatusCompanyFailed, time.Since(start), err)
				return nil
			}
			tr.Findings = cr.Findings
			tr.Outcome = &cr.Outcome
			tr.Team = &cr.Team
			o.transition(gctx, tr, StatusCompanyProcessed, time.Since(start), map[string]any{
				"approved":  len(cr.Outcome.Approved),
				"rejected":  len(cr.Outcome.Rejected),
				"cash_used": cr.Outcome.CashUsed,
			})
			return nil
		})
	}
	_ = g.Wait()
}

type marketOutcome struct {
	market.Result
	degraded bool
	err      error
}

// runMarket is the barrier stage. It runs once over the whole roster; on failure every team
// proceeds with the default market.
func (o *Orchestrator) runMarket(ctx context.Context, teams []*TeamResult) marketOutcome {
	outcomes := make(map[string]airlinesim.ImplementationOutcome)
	for _, tr := range teams {
		if tr.Status == StatusCompanyProcessed {
			outcomes[tr.TeamID] = *tr.Outcome
		}
	}
	if len(outcomes) == 0 {
		slog.Warn("WORKFLOW: No team reached the market stage, skipping it")
		return marketOutcome{Result: market.DefaultResult(o.now()), degraded: true}
	}

	start := time.Now()
	mr, err := o.safeMarket(ctx, outcomes)
	out := marketOutcome{Result: mr}
	if err != nil {
		slog.Error("WORKFLOW: Market stage failed, continuing with default market", "error", err)
		out = marketOutcome{Result: market.DefaultResult(o.now()), degraded: true, err: err}
	}
	o.report(ctx, airlinesim.Event{Name: "workflow.market", Status: statusOf(err), Duration: time.Since(start), Err: err})
	o.logStage(airlinesim.StageLog{Stage: "market", Status: statusOf(err), Timestamp: o.now(), Duration: time.Since(start), Error: errString(err)})

	for _, tr := range teams {
		if tr.Status != StatusCompanyProcessed {
			continue
		}
		if t, ok := out.Team(tr.TeamID); ok {
			tr.Team = &t
		}
		m := out.Market
		tr.Market = &m
		o.transition(ctx, tr, StatusMarketProcessed, 0, nil)
	}
	return out
}

func (o *Orchestrator) runEvaluation(ctx context.Context, teams []*TeamResult, mr market.Result) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for _, tr := range teams {
		if tr.Status != StatusMarketProcessed {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			in := evaluation.Input{Plan: tr.plan, Outcome: *tr.Outcome, Team: *tr.Team, Market: mr.Market}
			fb, err := o.evaluation.Evaluate(gctx, in)
			if fb.TeamID != "" {
				tr.Evaluation = &fb
			}
			if err != nil {
				o.fail(gctx, tr, StatusEvaluationFailed, time.Since(start), err)
				return nil
			}
			o.transition(gctx, tr, StatusCompleted, time.Since(start), map[string]any{"score": fb.Score, "source": fb.Source})
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) safeCompany(ctx context.Context, plan airlinesim.Plan) (cr company.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("company stage panicked: %v", r)
		}
	}()
	return o.company.ProcessPlan(ctx, plan)
}

func (o *Orchestrator) safeMarket(ctx context.Context, outcomes map[string]airlinesim.ImplementationOutcome) (mr market.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("market stage panicked: %v", r)
		}
	}()
	return o.market.Run(ctx, outcomes)
}

func (o *Orchestrator) transition(ctx context.Context, tr *TeamResult, to Status, d time.Duration, details map[string]any) {
	tr.Status = to
	slog.Info("WORKFLOW: Team transitioned", "team_id", tr.TeamID, "status", to)
	o.logStage(airlinesim.StageLog{TeamID: tr.TeamID, Stage: stageOf(to), Status: string(to), Timestamp: o.now(), Duration: d, Details: details})
	o.report(ctx, airlinesim.Event{Name: "workflow." + stageOf(to), TeamID: tr.TeamID, Status: string(to), Duration: d, Attrs: details})
}

func (o *Orchestrator) fail(ctx context.Context, tr *TeamResult, to Status, d time.Duration, err error) {
	tr.Status = to
	tr.Error = err.Error()
	tr.err = err
	slog.Error("WORKFLOW: Team failed", "team_id", tr.TeamID, "status", to, "error", err)
	o.logStage(airlinesim.StageLog{TeamID: tr.TeamID, Stage: stageOf(to), Status: string(to), Timestamp: o.now(), Duration: d, Error: err.Error()})
	o.report(ctx, airlinesim.Event{Name: "workflow." + stageOf(to), TeamID: tr.TeamID, Status: string(to), Duration: d, Err: err})
}

func (o *Orchestrator) logStage(entry airlinesim.StageLog) {
	if err := o.opts.StageLogger.LogStage(entry); err != nil {
		slog.Warn("WORKFLOW: Failed to write stage log", "error", err)
	}
}

func (o *Orchestrator) report(ctx context.Context, ev airlinesim.Event) {
	airlinesim.Report(ctx, o.opts.Reporter, ev)
}

func stageOf(s Status) string {
	switch s {
	case StatusReceived:
		return "received"
	case StatusCompanyProcessed, StatusCompanyFailed:
		return "company"
	case StatusMarketProcessed:
		return "market"
	default:
		return "evaluation"
	}
}

func statusOf(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
