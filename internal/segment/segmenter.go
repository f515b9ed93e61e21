package segment

import (
	"math"

	"railscan/internal/model"
)

type Config struct {
	// SecondsPerCoach is the average footage assumed per coach.
	SecondsPerCoach float64 `yaml:"secondsPerCoach" validate:"gt=0"`
	MinCoaches      int     `yaml:"minCoaches" validate:"gt=0"`
	MaxCoaches      int     `yaml:"maxCoaches" validate:"gtefield=MinCoaches"`
}

func DefaultConfig() Config {
	return Config{
		SecondsPerCoach: 15,
		MinCoaches:      6,
		MaxCoaches:      12,
	}
}

// CoachCount estimates how many coaches the footage holds:
// round(duration / SecondsPerCoach) clamped to [MinCoaches, MaxCoaches].
func CoachCount(stream model.VideoStream, conf Config) int {
	n := int(math.Round(stream.Duration() / conf.SecondsPerCoach))
	if n < conf.MinCoaches {
		n = conf.MinCoaches
	}
	if n > conf.MaxCoaches {
		n = conf.MaxCoaches
	}
	return n
}

// Split partitions [0, stream.FrameCount) into equal coach segments. The
// last segment absorbs the division remainder and the first is tagged as
// the engine. Streams shorter than the minimum coach count yield
// zero-length segments; they are returned as is.
func Split(stream model.VideoStream, conf Config) []model.CoachSegment {
	n := CoachCount(stream, conf)
	total := stream.FrameCount
	if total < 0 {
		total = 0
	}
	length := total / n

	segments := make([]model.CoachSegment, 0, n)
	for i := 0; i < n; i++ {
		seg := model.CoachSegment{
			Index: i + 1,
			Start: i * length,
			End:   min((i+1)*length, total),
			Type:  model.CoachTypeWagon,
		}
		if i == 0 {
			seg.Type = model.CoachTypeEngine
		}
		if i == n-1 {
			seg.End = total
		}
		segments = append(segments, seg)
	}
	return segments
}
