// Package pipeline drives segmentation, keyframe selection and
// classification for whole videos and batches of videos.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"railscan/internal/classify"
	"railscan/internal/keyframe"
	"railscan/internal/metrics"
	"railscan/internal/model"
	"railscan/internal/segment"
	"railscan/internal/video"
	"railscan/pkg/log"
)

// Opener opens a video for decoding. video.Open is the production opener.
type Opener func(path string) (video.Source, error)

type Analyzer struct {
	segConf  segment.Config
	selector *keyframe.Selector
	detector classify.Detector
	opts     Options
	open     Opener
}

func NewAnalyzer(segConf segment.Config, kfOpts keyframe.Options, detector classify.Detector, opts Options) *Analyzer {
	return &Analyzer{
		segConf:  segConf,
		selector: keyframe.NewSelector(kfOpts),
		detector: detector,
		opts:     opts,
		open:     video.Open,
	}
}

// WithOpener replaces the video opener.
func (a *Analyzer) WithOpener(open Opener) *Analyzer {
	a.open = open
	return a
}

// AnalyzeVideo analyses every coach of one video. A video that cannot be
// opened returns its (coach-less) analysis together with a
// *video.VideoAccessError. Coach failures never fail the video; they are
// recorded in the coach status.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, runId string, job Job) (*model.TrainAnalysis, error) {
	ctx, cancel := context.WithTimeout(log.WithTrain(ctx, job.TrainId), a.opts.VideoTimeout)
	defer cancel()
	logger := log.GetLogger(ctx).WithField("component", "pipeline")

	ta := &model.TrainAnalysis{
		TrainId:   job.TrainId,
		RunId:     runId,
		Source:    job.Path,
		StartedAt: time.Now(),
	}
	defer func() {
		ta.FinishedAt = time.Now()
		metrics.StageDuration.WithLabelValues("video").Observe(ta.FinishedAt.Sub(ta.StartedAt).Seconds())
	}()

	src, err := a.open(job.Path)
	if err != nil {
		ta.Error = err.Error()
		return ta, err
	}
	defer src.Close()

	if err := video.CheckReadable(src, job.Path); err != nil {
		ta.Error = err.Error()
		return ta, err
	}

	ta.Stream = src.Stream()
	segments := segment.Split(ta.Stream, a.segConf)
	logger.Infof("video %s: %d frames at %.2f fps, %d coaches", job.Path, ta.Stream.FrameCount, ta.Stream.FrameRate, len(segments))

	for i, seg := range segments {
		ca := a.analyzeCoach(ctx, src, seg, i == len(segments)-1)
		metrics.CoachesAnalyzedTotal.WithLabelValues(string(ca.Status)).Inc()
		ta.Coaches = append(ta.Coaches, ca)
	}
	return ta, nil
}

// analyzeCoach selects and classifies the keyframes of seg. last marks the
// final segment of the video, where a decode failure after a good read is
// taken as the real end of the stream.
func (a *Analyzer) analyzeCoach(ctx context.Context, src video.Source, seg model.CoachSegment, last bool) *model.CoachAnalysis {
	ctx, cancel := context.WithTimeout(ctx, a.opts.CoachTimeout)
	defer cancel()
	logger := log.GetLogger(ctx).WithField("component", "pipeline").WithField("coach", seg.Index)

	ca := &model.CoachAnalysis{
		Segment:         seg,
		Status:          model.CoachStatusComplete,
		ComponentTotals: classify.Fold(nil),
	}
	fail := func(err error) *model.CoachAnalysis {
		logger.WithError(err).Errorf("%s failed", seg)
		ca.Status = model.CoachStatusFailed
		ca.Error = err.Error()
		return ca
	}

	w, err := video.NewWindow(src, seg)
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	keys, selErr := a.selector.Select(ctx, w)
	metrics.StageDuration.WithLabelValues("select").Observe(time.Since(start).Seconds())
	// container frame counts are often overstated
	var decodeErr *video.FrameDecodeError
	if last && len(keys) > 0 && errors.As(selErr, &decodeErr) {
		logger.WithError(selErr).Warnf("%s: stream ended at frame %d, before the reported %d frames", seg, decodeErr.Frame, seg.End)
		selErr = nil
	}
	if len(keys) == 0 {
		if selErr == nil {
			selErr = video.ErrNoFrames
		}
		return fail(selErr)
	}

	start = time.Now()
	records, annotated, clsErr := a.classifyKeyframes(ctx, keys)
	metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(start).Seconds())

	// keep keyframes aligned with the frames that were classified
	for i := len(records); i < len(keys); i++ {
		keys[i].Image.Close()
	}
	ca.Keyframes = keys[:len(records)]
	ca.Records = records
	ca.Annotated = annotated
	ca.ComponentTotals = classify.Fold(records)
	metrics.KeyframesSelectedTotal.Add(float64(len(ca.Keyframes)))
	metrics.DetectionsTotal.WithLabelValues(string(model.CategoryDoor)).Add(float64(ca.DoorsOpen + ca.DoorsClosed))
	metrics.DetectionsTotal.WithLabelValues(string(model.CategoryEngine)).Add(float64(len(ca.Engines)))
	metrics.DetectionsTotal.WithLabelValues(string(model.CategoryWagon)).Add(float64(len(ca.Wagons)))

	if err := errors.Join(selErr, clsErr); err != nil {
		if len(records) == 0 {
			return fail(err)
		}
		logger.WithError(err).Errorf("%s incomplete after %d keyframes", seg, len(records))
		ca.Status = model.CoachStatusIncomplete
		ca.Error = err.Error()
		return ca
	}

	logger.Debugf("%s: %d keyframes, %d doors open, %d closed", seg, len(ca.Keyframes), ca.DoorsOpen, ca.DoorsClosed)
	return ca
}

type classified struct {
	record    model.ComponentRecord
	annotated gocv.Mat
	ok        bool
}

// classifyKeyframes classifies keys concurrently. Results are returned in
// keyframe order and cut at the first keyframe that could not be
// classified.
func (a *Analyzer) classifyKeyframes(ctx context.Context, keys []model.Keyframe) ([]model.ComponentRecord, []gocv.Mat, error) {
	results := make([]classified, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.ClassifyWorkers)
	for i := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := a.detector.Detect(gctx, keys[i].Image)
			if err != nil {
				return fmt.Errorf("classify frame %d: %w", keys[i].Index, err)
			}
			rec.FrameIndex = keys[i].Index
			results[i] = classified{record: rec, annotated: classify.Annotate(keys[i].Image, rec), ok: true}
			return nil
		})
	}
	err := g.Wait()

	n := 0
	for n < len(results) && results[n].ok {
		n++
	}
	records := make([]model.ComponentRecord, 0, n)
	annotated := make([]gocv.Mat, 0, n)
	for i, r := range results {
		switch {
		case i < n:
			records = append(records, r.record)
			annotated = append(annotated, r.annotated)
		case r.ok:
			r.annotated.Close()
		}
	}
	return records, annotated, err
}
