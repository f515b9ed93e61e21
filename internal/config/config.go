package config

import (
	"railscan/internal/classify"
	"railscan/internal/consumer"
	"railscan/internal/keyframe"
	"railscan/internal/output"
	"railscan/internal/pipeline"
	"railscan/internal/publish"
	"railscan/internal/segment"
	"railscan/internal/server"
	"railscan/internal/store"
)

type Config struct {
	Segmenter  segment.Config     `yaml:"segmenter"`
	Keyframe   keyframe.Options   `yaml:"keyframe"`
	Classifier classify.Options   `yaml:"classifier"`
	Pipeline   pipeline.Options   `yaml:"pipeline"`
	Output     output.Options     `yaml:"output"`
	Store      store.Options      `yaml:"store"`
	S3         publish.S3Options  `yaml:"s3"`
	NSQ        publish.NSQOptions `yaml:"nsq"`
	Consumer   consumer.Options   `yaml:"consumer"`
	Server     server.Options     `yaml:"server"`
}

func DefaultConfig() *Config {
	return &Config{
		Segmenter:  segment.DefaultConfig(),
		Keyframe:   keyframe.DefaultOptions(),
		Classifier: classify.DefaultOptions(),
		Pipeline:   pipeline.DefaultOptions(),
		Output: output.Options{
			Dir: "output",
		},
		Store: store.Options{
			Dir: "data/railscan",
		},
		S3: publish.S3Options{
			Bucket:   "railscan",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: publish.NSQOptions{
			NSQDAddr: "127.0.0.1:4150",
			Topic:    "railscan_coaches",
		},
		Consumer: consumer.Options{
			NSQDAddrs: []string{"127.0.0.1:4150"},
			Topic:     "railscan_requests",
			Channel:   "railscan",
		},
		Server: server.Options{
			Addr: "127.0.0.1:8081",
		},
	}
}
