package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"railscan/internal/classify"
	"railscan/internal/config"
	"railscan/internal/output"
	"railscan/internal/pipeline"
	"railscan/internal/publish"
	"railscan/internal/store"
)

// stack is the analysis pipeline with its result sinks.
type stack struct {
	runner    *pipeline.Runner
	store     *store.Store
	publisher *publish.Publisher
}

func (s *stack) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logrus.WithError(err).Error("close store failed")
		}
	}
}

func newStack(ctx context.Context, conf *config.Config, withStore bool) (*stack, error) {
	detector, err := classify.NewDetector(ctx, conf.Classifier)
	if err != nil {
		return nil, err
	}
	analyzer := pipeline.NewAnalyzer(conf.Segmenter, conf.Keyframe, detector, conf.Pipeline)

	s := &stack{}
	sinks := []pipeline.Sink{output.NewWriter(conf.Output)}

	if withStore {
		s.store, err = store.Open(conf.Store)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s.store)
	}

	s.publisher, err = publish.New(conf.S3, conf.NSQ)
	if err != nil {
		s.Close()
		return nil, err
	}
	if s.publisher != nil {
		sinks = append(sinks, s.publisher)
	}

	s.runner = pipeline.NewRunner(analyzer, conf.Pipeline.Workers, sinks...)
	return s, nil
}
