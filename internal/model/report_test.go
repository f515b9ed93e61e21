package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrainReportTotals(t *testing.T) {
	train := &TrainAnalysis{
		TrainId: "12309",
		Coaches: []*CoachAnalysis{
			{
				Segment:   CoachSegment{Index: 1, Start: 0, End: 50, Type: CoachTypeEngine},
				Status:    CoachStatusComplete,
				Keyframes: []Keyframe{{Index: 0}, {Index: 30}},
				ComponentTotals: ComponentTotals{
					DoorsOpen:   1,
					DoorsClosed: 2,
					Engines:     []BBox{{X: 1, Y: 1, W: 200, H: 100}, {X: 2, Y: 1, W: 200, H: 100}},
				},
			},
			{
				Segment: CoachSegment{Index: 2, Start: 50, End: 100, Type: CoachTypeWagon},
				Status:  CoachStatusIncomplete,
				Error:   "decode frame 72",
				ComponentTotals: ComponentTotals{
					DoorsClosed: 4,
					Wagons:      []BBox{{W: 90, H: 70}},
				},
			},
			{
				Segment: CoachSegment{Index: 3, Start: 100, End: 150, Type: CoachTypeWagon},
				Status:  CoachStatusFailed,
				Error:   "open window",
			},
		},
	}

	report := NewTrainReport(train)
	require.Len(t, report.Coaches, 3)

	assert.Equal(t, 3, report.Coaches[0].Doors)
	assert.Equal(t, 2, report.Coaches[0].EngineDetections)
	assert.Equal(t, []int{0, 30}, report.Coaches[0].KeyframeIndices)
	assert.Equal(t, 1, report.Coaches[1].WagonDetections)
	assert.NotNil(t, report.Coaches[2].Engines)

	assert.Equal(t, ReportTotals{
		Coaches:           3,
		CoachesAnalyzed:   2,
		CoachesFailed:     1,
		CoachesOpenDoors:  1,
		DoorsOpen:         1,
		DoorsClosed:       6,
		EngineDetections:  2,
		WagonDetections:   1,
		KeyframesSelected: 2,
	}, report.Totals)
}

func TestCoachSegment(t *testing.T) {
	seg := CoachSegment{Index: 2, Start: 50, End: 100, Type: CoachTypeWagon}
	assert.Equal(t, 50, seg.Len())
	assert.Equal(t, "coach 2 (wagon) [50, 100)", seg.String())
}

func TestVideoStreamDuration(t *testing.T) {
	assert.InDelta(t, 10.0, VideoStream{FrameRate: 30, FrameCount: 300}.Duration(), 1e-9)
	assert.Zero(t, VideoStream{FrameCount: 300}.Duration())
}

func TestBBoxRect(t *testing.T) {
	b := BBox{X: 10, Y: 20, W: 30, H: 40}
	assert.Equal(t, b, BBoxFromRect(b.Rect()))
	assert.Equal(t, 1200, b.Area())
}
