package model

import "fmt"

type CoachType string

const (
	CoachTypeEngine CoachType = "engine"
	CoachTypeWagon  CoachType = "wagon"
)

// VideoStream is the metadata of an opened video.
type VideoStream struct {
	FrameRate  float64 `json:"frame_rate"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

func (s VideoStream) Duration() float64 {
	if s.FrameRate <= 0 {
		return 0
	}
	return float64(s.FrameCount) / s.FrameRate
}

// CoachSegment is the half-open frame range [Start, End) of one coach.
// Index is 1-based.
type CoachSegment struct {
	Index int       `json:"index"`
	Start int       `json:"start_frame"`
	End   int       `json:"end_frame"`
	Type  CoachType `json:"type" jsonschema:"enum=engine,enum=wagon"`
}

func (s CoachSegment) Len() int {
	return s.End - s.Start
}

func (s CoachSegment) String() string {
	return fmt.Sprintf("coach %d (%s) [%d, %d)", s.Index, s.Type, s.Start, s.End)
}
