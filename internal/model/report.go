package model

import "time"

// CoachReport is the record handed to persistence and reporting for one
// coach. EngineDetections and WagonDetections count per-frame hits, the
// same engine seen in three keyframes counts three times.
type CoachReport struct {
	Coach            int         `json:"coach"`
	Type             CoachType   `json:"type" jsonschema:"enum=engine,enum=wagon"`
	Status           CoachStatus `json:"status" jsonschema:"enum=complete,enum=incomplete,enum=failed"`
	Error            string      `json:"error,omitempty"`
	StartFrame       int         `json:"start_frame"`
	EndFrame         int         `json:"end_frame"`
	KeyframeIndices  []int       `json:"keyframe_indices"`
	DoorsOpen        int         `json:"doors_open"`
	DoorsClosed      int         `json:"doors_closed"`
	Doors            int         `json:"doors"`
	Engines          []BBox      `json:"engines"`
	Wagons           []BBox      `json:"wagons"`
	EngineDetections int         `json:"engine_detections"`
	WagonDetections  int         `json:"wagon_detections"`
}

type ReportTotals struct {
	Coaches           int `json:"coaches"`
	CoachesAnalyzed   int `json:"coaches_analyzed"`
	CoachesFailed     int `json:"coaches_failed"`
	CoachesOpenDoors  int `json:"coaches_with_open_doors"`
	DoorsOpen         int `json:"doors_open"`
	DoorsClosed       int `json:"doors_closed"`
	EngineDetections  int `json:"engine_detections"`
	WagonDetections   int `json:"wagon_detections"`
	KeyframesSelected int `json:"keyframes_selected"`
}

type TrainReport struct {
	TrainId    string        `json:"train_id"`
	RunId      string        `json:"run_id"`
	Source     string        `json:"source"`
	Stream     VideoStream   `json:"stream"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Error      string        `json:"error,omitempty"`
	Coaches    []CoachReport `json:"coaches"`
	Totals     ReportTotals  `json:"totals"`
}

func NewCoachReport(c *CoachAnalysis) CoachReport {
	r := CoachReport{
		Coach:            c.Segment.Index,
		Type:             c.Segment.Type,
		Status:           c.Status,
		Error:            c.Error,
		StartFrame:       c.Segment.Start,
		EndFrame:         c.Segment.End,
		KeyframeIndices:  make([]int, 0, len(c.Keyframes)),
		DoorsOpen:        c.DoorsOpen,
		DoorsClosed:      c.DoorsClosed,
		Doors:            c.DoorsOpen + c.DoorsClosed,
		Engines:          c.Engines,
		Wagons:           c.Wagons,
		EngineDetections: len(c.Engines),
		WagonDetections:  len(c.Wagons),
	}
	for _, k := range c.Keyframes {
		r.KeyframeIndices = append(r.KeyframeIndices, k.Index)
	}
	if r.Engines == nil {
		r.Engines = []BBox{}
	}
	if r.Wagons == nil {
		r.Wagons = []BBox{}
	}
	return r
}

// NewTrainReport derives the report totals from the analysis. Failed
// coaches are counted separately and contribute nothing to the door and
// detection totals.
func NewTrainReport(t *TrainAnalysis) *TrainReport {
	report := &TrainReport{
		TrainId:    t.TrainId,
		RunId:      t.RunId,
		Source:     t.Source,
		Stream:     t.Stream,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Error:      t.Error,
		Coaches:    make([]CoachReport, 0, len(t.Coaches)),
	}
	for _, c := range t.Coaches {
		cr := NewCoachReport(c)
		report.Coaches = append(report.Coaches, cr)

		report.Totals.Coaches++
		if cr.Status == CoachStatusFailed {
			report.Totals.CoachesFailed++
			continue
		}
		report.Totals.CoachesAnalyzed++
		if cr.DoorsOpen > 0 {
			report.Totals.CoachesOpenDoors++
		}
		report.Totals.DoorsOpen += cr.DoorsOpen
		report.Totals.DoorsClosed += cr.DoorsClosed
		report.Totals.EngineDetections += cr.EngineDetections
		report.Totals.WagonDetections += cr.WagonDetections
		report.Totals.KeyframesSelected += len(cr.KeyframeIndices)
	}
	return report
}
