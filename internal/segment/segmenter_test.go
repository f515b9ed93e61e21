package segment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railscan/internal/model"
)

func TestSplitShortVideoClampsToMinimum(t *testing.T) {
	segments := Split(model.VideoStream{FrameRate: 30, FrameCount: 300}, DefaultConfig())

	require.Len(t, segments, 6)
	for i, seg := range segments {
		assert.Equal(t, i+1, seg.Index)
		assert.Equal(t, i*50, seg.Start)
		assert.Equal(t, 50, seg.Len())
		if i == 0 {
			assert.Equal(t, model.CoachTypeEngine, seg.Type)
		} else {
			assert.Equal(t, model.CoachTypeWagon, seg.Type)
		}
	}
}

func TestCoachCount(t *testing.T) {
	conf := DefaultConfig()
	tests := []struct {
		name   string
		frames int
		fps    float64
		want   int
	}{
		{"ten seconds", 300, 30, 6},
		{"two minutes", 3600, 30, 8},
		{"rounds down", 25 * 127, 25, 8},
		{"rounds half up", 255, 2, 9},
		{"rounds up", 25 * 129, 25, 9},
		{"long clamps to max", 30 * 60 * 10, 30, 12},
		{"zero fps", 1000, 0, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoachCount(model.VideoStream{FrameRate: tt.fps, FrameCount: tt.frames}, conf))
		})
	}
}

func TestSplitIsExactPartition(t *testing.T) {
	conf := DefaultConfig()
	for _, fps := range []float64{12.5, 24, 25, 29.97, 30, 60} {
		for _, frames := range []int{0, 1, 5, 7, 299, 300, 1001, 4523, 9000, 27001, 100000} {
			stream := model.VideoStream{FrameRate: fps, FrameCount: frames}
			segments := Split(stream, conf)

			want := int(math.Round(float64(frames) / fps / 15))
			want = max(conf.MinCoaches, min(conf.MaxCoaches, want))
			require.Len(t, segments, want, "fps=%v frames=%d", fps, frames)

			assert.Equal(t, 0, segments[0].Start)
			assert.Equal(t, frames, segments[len(segments)-1].End)
			engines := 0
			for i, seg := range segments {
				assert.LessOrEqual(t, seg.Start, seg.End)
				if i > 0 {
					assert.Equal(t, segments[i-1].End, seg.Start, "fps=%v frames=%d seg=%d", fps, frames, i)
				}
				if seg.Type == model.CoachTypeEngine {
					engines++
				}
			}
			assert.Equal(t, 1, engines)
		}
	}
}

func TestSplitRemainderGoesToLastSegment(t *testing.T) {
	segments := Split(model.VideoStream{FrameRate: 30, FrameCount: 305}, DefaultConfig())
	require.Len(t, segments, 6)
	assert.Equal(t, 50, segments[4].Len())
	assert.Equal(t, 55, segments[5].Len())
}

func TestSplitDegenerateVideo(t *testing.T) {
	segments := Split(model.VideoStream{FrameRate: 30, FrameCount: 4}, DefaultConfig())
	require.Len(t, segments, 6)
	for _, seg := range segments[:5] {
		assert.Zero(t, seg.Len())
	}
	assert.Equal(t, model.CoachSegment{Index: 6, Start: 0, End: 4, Type: model.CoachTypeWagon}, segments[5])
}
