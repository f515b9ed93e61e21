// Package output lays analysis results out on disk, one folder per coach:
//
//	<dir>/<train>_<coach>/frames/<train>_<coach>_NNN.jpg
//	<dir>/<train>_<coach>/annotated/<train>_<coach>_annotated_NNN.jpg
//	<dir>/<train>_<coach>/<train>_<coach>_components.json
//	<dir>/<train>_<coach>/<train>_<coach>.mp4          (optional clip)
//	<dir>/<train>/summary.json
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/pipeline"
	"railscan/internal/video"
	"railscan/pkg/log"
)

type Options struct {
	Dir        string `yaml:"dir" validate:"required"`
	WriteClips bool   `yaml:"writeClips"`
}

// ClipFunc writes the frames of seg from the video at src into out.
type ClipFunc func(ctx context.Context, src string, seg model.CoachSegment, out string) error

// CoachFile is the content of a coach's components.json.
type CoachFile struct {
	TrainId string `json:"train_id"`
	model.CoachReport
}

type Writer struct {
	opts Options
	clip ClipFunc
}

func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts, clip: video.ExtractClip}
}

func CoachName(trainId string, coach int) string {
	return fmt.Sprintf("%s_%d", trainId, coach)
}

func (w *Writer) CoachDir(trainId string, coach int) string {
	return filepath.Join(w.opts.Dir, CoachName(trainId, coach))
}

func (w *Writer) SummaryPath(trainId string) string {
	return filepath.Join(w.opts.Dir, trainId, "summary.json")
}

// Consume writes every coach folder and then the train summary. A coach
// that fails to write does not stop the others.
func (w *Writer) Consume(ctx context.Context, t *model.TrainAnalysis) error {
	logger := log.GetLogger(ctx).WithField("component", "output")
	if !pipeline.ValidTrainId(t.TrainId) {
		return fmt.Errorf("refusing to write train %q outside %s", t.TrainId, w.opts.Dir)
	}

	var firstErr error
	for _, c := range t.Coaches {
		if err := w.writeCoach(ctx, t, c); err != nil {
			logger.WithError(err).Errorf("write coach %d failed", c.Segment.Index)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	report := model.NewTrainReport(t)
	if err := writeJSON(w.SummaryPath(t.TrainId), report); err != nil {
		return err
	}
	logger.Infof("wrote %d coach folders to %s", len(t.Coaches), w.opts.Dir)
	return firstErr
}

func (w *Writer) writeCoach(ctx context.Context, t *model.TrainAnalysis, c *model.CoachAnalysis) error {
	name := CoachName(t.TrainId, c.Segment.Index)
	dir := w.CoachDir(t.TrainId, c.Segment.Index)
	framesDir := filepath.Join(dir, "frames")
	annotatedDir := filepath.Join(dir, "annotated")
	for _, d := range []string{framesDir, annotatedDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}

	for i, k := range c.Keyframes {
		if err := writeImage(filepath.Join(framesDir, fmt.Sprintf("%s_%03d.jpg", name, i+1)), k.Image); err != nil {
			return err
		}
	}
	for i, m := range c.Annotated {
		if err := writeImage(filepath.Join(annotatedDir, fmt.Sprintf("%s_annotated_%03d.jpg", name, i+1)), m); err != nil {
			return err
		}
	}

	file := CoachFile{TrainId: t.TrainId, CoachReport: model.NewCoachReport(c)}
	if err := writeJSON(filepath.Join(dir, name+"_components.json"), file); err != nil {
		return err
	}

	if w.opts.WriteClips && c.Status != model.CoachStatusFailed && c.Segment.Len() > 0 {
		if err := w.clip(ctx, t.Source, c.Segment, filepath.Join(dir, name+".mp4")); err != nil {
			return fmt.Errorf("extract clip for %s: %w", name, err)
		}
	}
	return nil
}

func writeImage(path string, m gocv.Mat) error {
	if m.Empty() {
		return fmt.Errorf("write image file %s: empty image", path)
	}
	if !gocv.IMWrite(path, m) {
		return fmt.Errorf("write image file %s error", path)
	}
	return nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s error: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write json file %s error: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename json file %s error: %w", path, err)
	}
	return nil
}

// ReadSummary loads a train summary written by Consume.
func (w *Writer) ReadSummary(trainId string) (*model.TrainReport, error) {
	data, err := os.ReadFile(w.SummaryPath(trainId))
	if err != nil {
		return nil, err
	}
	var report model.TrainReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal summary of %s: %w", trainId, err)
	}
	return &report, nil
}
