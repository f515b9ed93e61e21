package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"railscan/internal/metrics"
	"railscan/internal/model"
	"railscan/pkg/log"
)

// Sink consumes a finished train analysis, e.g. to write or publish it.
// Images in the analysis are only valid for the duration of the call.
type Sink interface {
	Consume(ctx context.Context, t *model.TrainAnalysis) error
}

type Runner struct {
	analyzer *Analyzer
	sinks    []Sink
	workers  int
}

func NewRunner(analyzer *Analyzer, workers int, sinks ...Sink) *Runner {
	return &Runner{
		analyzer: analyzer,
		sinks:    sinks,
		workers:  max(1, workers),
	}
}

// Run analyses jobs on a bounded worker pool and hands each analysis to
// every sink. A failing video or sink is logged and does not stop the
// others; the returned error joins all such failures. Results are in job
// order and have their images released.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]*model.TrainAnalysis, error) {
	runId := uuid.NewString()
	ctx = log.WithRun(ctx, runId)
	logger := log.GetLogger(ctx).WithField("component", "runner")
	logger.Infof("analysing %d videos with %d workers", len(jobs), r.workers)

	results := make([]*model.TrainAnalysis, len(jobs))
	errs := make([]error, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, job := range jobs {
		g.Go(func() error {
			results[i], errs[i] = r.runOne(ctx, runId, job)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

func (r *Runner) runOne(ctx context.Context, runId string, job Job) (*model.TrainAnalysis, error) {
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()
	logger := log.GetLogger(log.WithTrain(ctx, job.TrainId)).WithField("component", "runner")

	ta, err := r.analyzer.AnalyzeVideo(ctx, runId, job)
	defer ta.Close()
	if err != nil {
		metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		logger.WithError(err).Errorf("failed to analyse %s", job.Path)
		err = fmt.Errorf("train %s: %w", job.TrainId, err)
	} else {
		metrics.VideosProcessedTotal.WithLabelValues("completed").Inc()
	}

	var sinkErrs []error
	for _, sink := range r.sinks {
		if serr := sink.Consume(ctx, ta); serr != nil {
			logger.WithError(serr).Errorf("failed to store results of %s", job.Path)
			sinkErrs = append(sinkErrs, fmt.Errorf("train %s: %w", job.TrainId, serr))
		}
	}
	return ta, errors.Join(append([]error{err}, sinkErrs...)...)
}
