// Package classify finds doors, engines and wagons in a single frame and
// folds per-frame records into per-coach totals.
package classify

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/video"
)

// Detector produces the component record of one BGR frame. FrameIndex of
// the returned record is left for the caller to fill in.
type Detector interface {
	Detect(ctx context.Context, frame gocv.Mat) (model.ComponentRecord, error)
}

// NewDetector builds the detector selected by opts.Strategy.
func NewDetector(ctx context.Context, opts Options) (Detector, error) {
	switch opts.Strategy {
	case StrategyHeuristic, "":
		return NewContourDetector(opts), nil
	case StrategyTriton:
		return NewTritonDetector(ctx, opts.Triton)
	default:
		return nil, fmt.Errorf("unknown classify strategy %q", opts.Strategy)
	}
}

// Candidate is the bounding box and enclosed area of one external contour.
type Candidate struct {
	BBox model.BBox
	Area float64
}

// ContourDetector applies the geometric rules to the external contours of
// the frame's edge map.
type ContourDetector struct {
	opts  Options
	rules Rules
}

func NewContourDetector(opts Options) *ContourDetector {
	return &ContourDetector{opts: opts, rules: opts.Rules()}
}

// Detect never fails. A frame that cannot be converted to intensity yields
// an empty record.
func (d *ContourDetector) Detect(_ context.Context, frame gocv.Mat) (model.ComponentRecord, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Empty() || !video.ToGray(frame, &gray) {
		return model.ComponentRecord{}, nil
	}
	return d.Classify(gray, Candidates(gray, d.opts.CannyLow, d.opts.CannyHigh)), nil
}

// Classify runs the door, engine and wagon rules over candidates. Each rule
// is independent, so one candidate may be reported under several categories.
func (d *ContourDetector) Classify(gray gocv.Mat, candidates []Candidate) model.ComponentRecord {
	var rec model.ComponentRecord
	for _, c := range candidates {
		if d.rules.Door.Match(c.BBox, c.Area) {
			rec.Doors = append(rec.Doors, model.DoorObservation{
				BBox:   c.BBox,
				Status: DoorStatus(gray, c.BBox, d.opts.VarianceThreshold),
				Area:   c.Area,
			})
		}
		if d.rules.Engine.Match(c.BBox, c.Area) {
			rec.Engines = append(rec.Engines, c.BBox)
		}
		if d.rules.Wagon.Match(c.BBox, c.Area) {
			rec.Wagons = append(rec.Wagons, c.BBox)
		}
	}
	return rec
}

// Candidates extracts the external contours of the Canny edge map of gray.
func Candidates(gray gocv.Mat, low, high float32) []Candidate {
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, low, high)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		out = append(out, Candidate{
			BBox: model.BBoxFromRect(gocv.BoundingRect(c)),
			Area: gocv.ContourArea(c),
		})
	}
	return out
}

// DoorStatus reports open when the intensity variance of the crop exceeds
// threshold. Crops that fall outside the frame are closed.
func DoorStatus(gray gocv.Mat, box model.BBox, threshold float64) model.DoorStatus {
	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	rect := box.Rect().Intersect(bounds)
	if rect.Empty() {
		return model.DoorClosed
	}

	crop := gray.Region(rect)
	defer crop.Close()
	if Variance(crop) > threshold {
		return model.DoorOpen
	}
	return model.DoorClosed
}

// Variance is the population variance of a single-channel image.
func Variance(m gocv.Mat) float64 {
	if m.Empty() {
		return 0
	}
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()

	gocv.MeanStdDev(m, &mean, &stddev)
	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd
}
