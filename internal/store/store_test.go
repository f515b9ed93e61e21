package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railscan/internal/model"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func analysis(trainId string) *model.TrainAnalysis {
	return &model.TrainAnalysis{
		TrainId: trainId,
		RunId:   "run",
		Coaches: []*model.CoachAnalysis{
			{
				Segment: model.CoachSegment{Index: 1, Start: 0, End: 50, Type: model.CoachTypeEngine},
				Status:  model.CoachStatusComplete,
				ComponentTotals: model.ComponentTotals{
					DoorsOpen:   2,
					DoorsClosed: 1,
					Engines:     []model.BBox{{W: 300, H: 100}},
				},
			},
			{
				Segment: model.CoachSegment{Index: 2, Start: 50, End: 100, Type: model.CoachTypeWagon},
				Status:  model.CoachStatusIncomplete,
				Error:   "decode frame 70: eof",
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.Consume(context.Background(), analysis("T2")))

	report, err := s.GetTrain("T2")
	require.NoError(t, err)
	assert.Equal(t, "T2", report.TrainId)
	assert.Equal(t, 3, report.Totals.DoorsClosed+report.Totals.DoorsOpen)
	assert.Equal(t, 1, report.Totals.EngineDetections)

	coach, err := s.GetCoach("T2", 2)
	require.NoError(t, err)
	assert.Equal(t, model.CoachStatusIncomplete, coach.Status)
	assert.Equal(t, "decode frame 70: eof", coach.Error)

	_, err = s.GetCoach("T2", 9)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTrain("T404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreListAndDelete(t *testing.T) {
	s := openMemory(t)
	for _, id := range []string{"T3", "T1", "T2"} {
		require.NoError(t, s.Consume(context.Background(), analysis(id)))
	}
	// re-analysis replaces the earlier report
	require.NoError(t, s.Consume(context.Background(), analysis("T1")))

	reports, err := s.ListTrains()
	require.NoError(t, err)
	var ids []string
	for _, r := range reports {
		ids = append(ids, r.TrainId)
	}
	assert.Equal(t, []string{"T1", "T2", "T3"}, ids)

	require.NoError(t, s.DeleteTrain("T2"))
	reports, err = s.ListTrains()
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Consume(context.Background(), analysis("T9")))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	report, err := s.GetTrain("T9")
	require.NoError(t, err)
	assert.Len(t, report.Coaches, 2)
}
