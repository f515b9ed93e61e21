// Package keyframe picks a small set of visually distinct frames from one
// coach segment by change-point detection against a moving reference.
package keyframe

import (
	"context"
	"errors"

	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/video"
	"railscan/pkg/log"
)

// FrameReader is a bounded, rewindable frame sequence. *video.Window
// satisfies it.
type FrameReader interface {
	Len() int
	// Read decodes the next frame into dst and returns its source index.
	// video.ErrEndOfWindow marks exhaustion.
	Read(dst *gocv.Mat) (int, error)
	Skip(n int) error
	Rewind() error
}

type Options struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold" validate:"gt=0,lt=1"`
	TargetCount         int     `yaml:"targetCount" validate:"min=1"`
}

func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: 0.9,
		TargetCount:         8,
	}
}

// SampleInterval is the stride between considered frames for a segment of n
// frames. It spaces roughly three candidates per requested keyframe.
func SampleInterval(n, target int) int {
	if target <= 0 {
		return 1
	}
	return max(1, n/(target*3))
}

type Selector struct {
	opts Options
}

func NewSelector(opts Options) *Selector {
	return &Selector{opts: opts}
}

// Select returns at most TargetCount keyframes in source order. The first
// sampled frame is always kept; later samples are kept when their similarity
// to the most recent keyframe drops below the threshold.
//
// A decode failure stops selection and returns the keyframes gathered so far
// together with the error. The caller owns the returned images.
func (s *Selector) Select(ctx context.Context, r FrameReader) ([]model.Keyframe, error) {
	logger := log.GetLogger(ctx).WithField("component", "keyframe")
	interval := SampleInterval(r.Len(), s.opts.TargetCount)

	var (
		keys     []model.Keyframe
		ref      = gocv.NewMat()
		gray     = gocv.NewMat()
		refValid bool
	)
	defer ref.Close()
	defer gray.Close()

	for len(keys) < s.opts.TargetCount {
		if err := ctx.Err(); err != nil {
			return keys, err
		}

		frame := gocv.NewMat()
		idx, err := r.Read(&frame)
		if err != nil {
			frame.Close()
			if errors.Is(err, video.ErrEndOfWindow) {
				break
			}
			return keys, err
		}

		ok := video.ToGray(frame, &gray)
		score := 0.0
		if ok && refValid {
			score = Similarity(ref, gray)
		}
		if len(keys) == 0 || score < s.opts.SimilarityThreshold {
			logger.Debugf("frame %d selected, similarity %.3f", idx, score)
			keys = append(keys, model.Keyframe{Index: idx, Image: frame})
			refValid = ok
			if ok {
				gray.CopyTo(&ref)
			}
		} else {
			frame.Close()
		}

		if err := r.Skip(interval - 1); err != nil {
			return keys, err
		}
	}

	if len(keys) > 0 {
		return keys, nil
	}
	return s.fallback(r)
}

// fallback returns the first readable frame of the segment.
func (s *Selector) fallback(r FrameReader) ([]model.Keyframe, error) {
	if err := r.Rewind(); err != nil {
		return nil, err
	}
	frame := gocv.NewMat()
	idx, err := r.Read(&frame)
	if err != nil {
		frame.Close()
		if errors.Is(err, video.ErrEndOfWindow) {
			return nil, video.ErrNoFrames
		}
		return nil, err
	}
	return []model.Keyframe{{Index: idx, Image: frame}}, nil
}
