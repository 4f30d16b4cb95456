// Package oracle computes the distance results of the pool under computation
// and persists them for the node to submit.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/paw-chain/distance/oracle/artifact"
	"github.com/paw-chain/distance/oracle/telemetry"
	"github.com/paw-chain/distance/oracle/wot"
	"github.com/paw-chain/distance/x/distance/types"
)

// ErrNothingToDo is returned when a run has no work: the artifact already
// exists or the pool under computation is empty.
var ErrNothingToDo = errors.New("nothing to do")

// Config holds runner configuration
type Config struct {
	// Workers bounds the goroutines scoring identities. Zero uses GOMAXPROCS.
	Workers int
}

// Result summarises a run that wrote an artifact.
type Result struct {
	RunID       string
	Period      uint64
	Identities  int
	Referees    int
	Threshold   uint32
	Pruned      []uint64
	Duration    time.Duration
	Distances   []types.Perbill
	ArtifactDir string
}

// Runner fetches, computes, persists and prunes.
type Runner struct {
	client  ChainClient
	store   *artifact.Store
	config  Config
	logger  log.Logger
	metrics *OracleMetrics
	tracer  trace.Tracer

	runDuration metric.Float64Histogram
	observers   []func(Result, error)
}

// NewRunner creates a runner. A nil provider falls back to the global
// OpenTelemetry providers.
func NewRunner(client ChainClient, store *artifact.Store, cfg Config, logger log.Logger, provider *telemetry.Provider) (*Runner, error) {
	histogram, err := provider.Meter().Float64Histogram(
		"oracle.run.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of oracle runs that wrote an artifact"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run histogram: %w", err)
	}
	return &Runner{
		client:      client,
		store:       store,
		config:      cfg,
		logger:      logger.With("module", "distance-oracle"),
		metrics:     NewOracleMetrics(),
		tracer:      provider.Tracer(),
		runDuration: histogram,
	}, nil
}

// OnRun registers fn to be called after every run with its outcome.
func (r *Runner) OnRun(fn func(Result, error)) {
	r.observers = append(r.observers, fn)
}

// Run scores the pool under computation in the current period and writes the
// result as the artifact of the next period, when it will be submitted. A
// second run for the same period returns ErrNothingToDo.
func (r *Runner) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	ctx, span := telemetry.StartRunSpan(ctx, r.tracer, runID)
	defer func() {
		switch {
		case errors.Is(err, ErrNothingToDo):
			r.metrics.Runs.WithLabelValues("skipped").Inc()
		case err != nil:
			telemetry.RecordError(span, err)
			r.metrics.Runs.WithLabelValues("failed").Inc()
		default:
			r.metrics.Runs.WithLabelValues("written").Inc()
		}
		span.End()
		for _, fn := range r.observers {
			fn(res, err)
		}
	}()

	period, err := r.client.Period(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query period: %w", err)
	}
	target := period.CurrentPeriod + 1
	span.SetAttributes(
		attribute.Int64("oracle.period", int64(period.CurrentPeriod)),
		attribute.Int64("oracle.evaluation_height", period.EvaluationHeight),
	)

	exists, err := r.store.Exists(target)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check artifact: %w", err)
	}
	if exists {
		logger.Debug("artifact already exists", "period", target)
		return Result{}, fmt.Errorf("%w: artifact for period %d exists", ErrNothingToDo, target)
	}

	pool, err := r.client.Pool(ctx, types.RoleComputation)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query pool: %w", err)
	}
	if pool.Period != period.CurrentPeriod {
		return Result{}, fmt.Errorf("period advanced from %d to %d during run", period.CurrentPeriod, pool.Period)
	}
	identities := pool.Pool.Identities()
	if len(identities) == 0 {
		logger.Debug("no identity to evaluate", "period", period.CurrentPeriod)
		return Result{}, fmt.Errorf("%w: empty pool in period %d", ErrNothingToDo, period.CurrentPeriod)
	}

	params, err := r.client.Params(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query params: %w", err)
	}
	graph, err := r.client.Snapshot(ctx, period.EvaluationHeight)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snapshot := wot.NewSnapshot(graph.Members, graph.ReceivedMap())
	referees, threshold, err := wot.SelectReferees(snapshot, params.MaxRefereeDistance)
	if err != nil {
		return Result{}, fmt.Errorf("failed to select referees: %w", err)
	}
	telemetry.AddSpanEvent(span, "referees.selected",
		attribute.Int("oracle.referees", len(referees)),
		attribute.Int64("oracle.threshold", int64(threshold)),
	)

	distances, err := wot.Evaluate(ctx, snapshot, referees, params.MaxRefereeDistance, identities, r.config.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("failed to evaluate distances: %w", err)
	}

	written, err := r.store.Write(artifact.Artifact{Period: target, Distances: distances})
	if err != nil {
		return Result{}, fmt.Errorf("failed to persist artifact: %w", err)
	}
	if !written {
		// another run won the race
		return Result{}, fmt.Errorf("%w: artifact for period %d exists", ErrNothingToDo, target)
	}

	pruned, err := r.store.Prune(period.CurrentPeriod)
	if err != nil {
		logger.Error("failed to prune artifacts", "error", err)
	}

	duration := time.Since(start)
	r.metrics.RunDuration.Observe(duration.Seconds())
	r.metrics.IdentitiesScored.Add(float64(len(identities)))
	r.metrics.Referees.Set(float64(len(referees)))
	r.metrics.RefereeThreshold.Set(float64(threshold))
	r.metrics.ArtifactsPruned.Add(float64(len(pruned)))
	r.metrics.LastPeriod.Set(float64(target))
	r.runDuration.Record(ctx, duration.Seconds())

	logger.Info("distances computed",
		"period", target,
		"identities", len(identities),
		"referees", len(referees),
		"threshold", threshold,
		"evaluation_height", graph.Height,
		"duration", duration,
	)

	return Result{
		RunID:       runID,
		Period:      target,
		Identities:  len(identities),
		Referees:    len(referees),
		Threshold:   threshold,
		Pruned:      pruned,
		Duration:    duration,
		Distances:   distances,
		ArtifactDir: r.store.Dir(),
	}, nil
}

// RunEvery runs on each tick until ctx is cancelled. Failures are logged and
// retried on the next tick.
func (r *Runner) RunEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Run(ctx); err != nil && !errors.Is(err, ErrNothingToDo) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("oracle run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
