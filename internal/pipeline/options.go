package pipeline

import "time"

type Options struct {
	// Workers bounds the number of videos analysed at once.
	Workers int `yaml:"workers" validate:"min=1"`
	// ClassifyWorkers bounds concurrent keyframe classification per coach.
	ClassifyWorkers int           `yaml:"classifyWorkers" validate:"min=1"`
	VideoTimeout    time.Duration `yaml:"videoTimeout" validate:"gt=0"`
	CoachTimeout    time.Duration `yaml:"coachTimeout" validate:"gt=0"`
}

func DefaultOptions() Options {
	return Options{
		Workers:         2,
		ClassifyWorkers: 4,
		VideoTimeout:    30 * time.Minute,
		CoachTimeout:    5 * time.Minute,
	}
}
