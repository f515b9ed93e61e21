package model

import (
	"time"

	"gocv.io/x/gocv"
)

type CoachStatus string

const (
	// CoachStatusComplete means every selected keyframe was classified.
	CoachStatusComplete CoachStatus = "complete"
	// CoachStatusIncomplete means a read or classification failure cut the
	// coach short; the records gathered before the failure are kept.
	CoachStatusIncomplete CoachStatus = "incomplete"
	// CoachStatusFailed means nothing could be analysed for the coach.
	CoachStatusFailed CoachStatus = "failed"
)

// Keyframe is a decoded frame selected to represent a coach.
type Keyframe struct {
	Index int      `json:"index"`
	Image gocv.Mat `json:"-"`
}

type CoachAnalysis struct {
	Segment   CoachSegment      `json:"segment"`
	Status    CoachStatus       `json:"status"`
	Error     string            `json:"error,omitempty"`
	Keyframes []Keyframe        `json:"keyframes"`
	Annotated []gocv.Mat        `json:"-"`
	Records   []ComponentRecord `json:"records"`
	ComponentTotals
}

// Close releases the native images held by the analysis.
func (c *CoachAnalysis) Close() {
	for i := range c.Keyframes {
		c.Keyframes[i].Image.Close()
	}
	for i := range c.Annotated {
		c.Annotated[i].Close()
	}
}

type TrainAnalysis struct {
	TrainId    string           `json:"train_id"`
	RunId      string           `json:"run_id"`
	Source     string           `json:"source"`
	Stream     VideoStream      `json:"stream"`
	Coaches    []*CoachAnalysis `json:"coaches"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Error      string           `json:"error,omitempty"`
}

func (t *TrainAnalysis) Close() {
	for _, c := range t.Coaches {
		c.Close()
	}
}
