package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/apiprobe/internal/notify"
	"github.com/hamed0406/apiprobe/internal/probe"
	"github.com/hamed0406/apiprobe/internal/repo"
	"github.com/hamed0406/apiprobe/internal/report"
	"github.com/hamed0406/apiprobe/internal/suite"
)

// Rerunner executes the configured suite on a fixed interval and stores
// each finished report. Every pass gets a fresh probe.Runner, so the
// result log never sees concurrent appends.
type Rerunner struct {
	Logger    *zap.Logger
	Runs      repo.RunStore
	Notifier  notify.Notifier
	SuitePath string
	BaseURL   string
	Interval  time.Duration
	Cooldown  time.Duration // min gap between failure notifications

	lastNotified time.Time
}

func NewRerunner(logger *zap.Logger, runs repo.RunStore, n notify.Notifier, suitePath, baseURL string, interval time.Duration) *Rerunner {
	return &Rerunner{
		Logger:    logger,
		Runs:      runs,
		Notifier:  n,
		SuitePath: suitePath,
		BaseURL:   baseURL,
		Interval:  interval,
		Cooldown:  15 * time.Minute,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Rerunner) Run(ctx context.Context) {
	if r.Interval <= 0 || r.SuitePath == "" {
		r.Logger.Info("rerunner_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rerunner_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rerunner) runOnce(ctx context.Context) {
	st, err := suite.Load(r.SuitePath)
	if err != nil {
		r.Logger.Warn("rerunner_suite_load_error", zap.String("path", r.SuitePath), zap.Error(err))
		return
	}
	specs, err := st.Build(r.BaseURL)
	if err != nil {
		r.Logger.Warn("rerunner_suite_build_error", zap.Error(err))
		return
	}

	runner := probe.NewRunner(nil)
	started := time.Now().UTC()
	if _, err := runner.RunAll(ctx, specs); err != nil {
		r.Logger.Warn("rerunner_run_error", zap.Error(err))
		return
	}

	target := r.BaseURL
	if target == "" {
		target = st.BaseURL
	}
	run := &repo.StoredRun{
		Suite:     st.Name,
		StartedAt: started,
		Document:  report.New(target, runner.Report()),
	}
	if err := r.Runs.Save(ctx, run); err != nil {
		r.Logger.Warn("rerunner_save_error", zap.Error(err))
		return
	}

	sum := run.Document.Summary
	r.Logger.Info("rerunner_pass",
		zap.String("run_id", run.ID),
		zap.String("suite", run.Suite),
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("errored", sum.Errored),
	)

	r.maybeNotify(ctx, target, sum)
}

// maybeNotify sends at most one failure notification per cooldown
// window.
func (r *Rerunner) maybeNotify(ctx context.Context, target string, sum probe.Summary) {
	if r.Notifier == nil || sum.Failed+sum.Errored == 0 {
		return
	}
	if !r.lastNotified.IsZero() && time.Since(r.lastNotified) < r.Cooldown {
		return
	}
	title, text := notify.SummaryText(target, sum)
	if err := r.Notifier.Send(ctx, title, text); err != nil {
		r.Logger.Warn("rerunner_notify_error", zap.Error(err))
		return
	}
	r.lastNotified = time.Now()
}
