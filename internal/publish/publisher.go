// Package publish uploads coach images to object storage and announces
// each analysed coach on an NSQ topic.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nsqio/go-nsq"
	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/output"
	"railscan/pkg/log"
)

type S3Options struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket" validate:"required_if=Enabled true"`
	Endpoint        string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

func (c S3Options) UrlPrefix() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
}

type NSQOptions struct {
	Enabled  bool   `yaml:"enabled"`
	NSQDAddr string `yaml:"nsqdAddr" validate:"required_if=Enabled true"`
	Topic    string `yaml:"topic" validate:"required_if=Enabled true"`
}

// CoachMessage is published once per coach.
type CoachMessage struct {
	Id        string            `json:"id"`
	RunId     string            `json:"run_id"`
	TrainId   string            `json:"train_id"`
	Timestamp int64             `json:"timestamp"`
	BaseUrl   string            `json:"base_url,omitempty"`
	Report    model.CoachReport `json:"report"`
	Frames    []string          `json:"frames"`
	Annotated []string          `json:"annotated"`
}

type messageProducer interface {
	Publish(topic string, body []byte) error
}

type Publisher struct {
	s3       S3Options
	topic    string
	objects  objectPutter
	producer messageProducer
	stop     func()
}

// New connects the enabled backends. It returns nil when neither is
// enabled.
func New(s3 S3Options, nsqOpts NSQOptions) (*Publisher, error) {
	if !s3.Enabled && !nsqOpts.Enabled {
		return nil, nil
	}
	p := &Publisher{s3: s3, topic: nsqOpts.Topic, stop: func() {}}

	if s3.Enabled {
		region := s3.Region
		if region == "" {
			region = "us-east-1"
		}
		minioCli, err := minio.New(s3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(s3.AccessKeyID, s3.SecretAccessKey, ""),
			Secure: s3.UseSSL,
			Region: region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client failed: %w", err)
		}
		p.objects = minioCli
	}

	if nsqOpts.Enabled {
		producer, err := nsq.NewProducer(nsqOpts.NSQDAddr, nsq.NewConfig())
		if err != nil {
			return nil, fmt.Errorf("create NSQ producer failed: %w", err)
		}
		if err := producer.Ping(); err != nil {
			producer.Stop()
			return nil, fmt.Errorf("ping NSQ %s failed: %w", nsqOpts.NSQDAddr, err)
		}
		p.producer = producer
		p.stop = producer.Stop
	}
	return p, nil
}

func (p *Publisher) Close() {
	p.stop()
}

// Consume uploads the keyframes and annotated frames of every coach and
// publishes one CoachMessage per coach, failed coaches included.
func (p *Publisher) Consume(ctx context.Context, t *model.TrainAnalysis) error {
	logger := log.GetLogger(ctx).WithField("component", "publish")

	var errs []error
	for _, c := range t.Coaches {
		msg := &CoachMessage{
			Id:        uuid.NewString(),
			RunId:     t.RunId,
			TrainId:   t.TrainId,
			Timestamp: time.Now().UnixNano(),
			Report:    model.NewCoachReport(c),
			Frames:    []string{},
			Annotated: []string{},
		}

		if p.objects != nil {
			msg.BaseUrl = p.s3.UrlPrefix()
			name := output.CoachName(t.TrainId, c.Segment.Index)
			for i, k := range c.Keyframes {
				objectPath := fmt.Sprintf("/%s/%d/frames/%s_%03d.jpg", t.TrainId, c.Segment.Index, name, i+1)
				if err := p.uploadImage(ctx, objectPath, k.Image); err != nil {
					errs = append(errs, err)
					continue
				}
				msg.Frames = append(msg.Frames, objectPath)
			}
			for i, m := range c.Annotated {
				objectPath := fmt.Sprintf("/%s/%d/annotated/%s_annotated_%03d.jpg", t.TrainId, c.Segment.Index, name, i+1)
				if err := p.uploadImage(ctx, objectPath, m); err != nil {
					errs = append(errs, err)
					continue
				}
				msg.Annotated = append(msg.Annotated, objectPath)
			}
		}

		if p.producer != nil {
			msgData, _ := json.Marshal(msg)
			if err := p.producer.Publish(p.topic, msgData); err != nil {
				errs = append(errs, fmt.Errorf("publish coach %d to NSQ failed: %w", c.Segment.Index, err))
				continue
			}
		}
		logger.Debugf("published coach %d with %d images", c.Segment.Index, len(msg.Frames)+len(msg.Annotated))
	}
	return errors.Join(errs...)
}

func (p *Publisher) uploadImage(ctx context.Context, objectPath string, img gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", objectPath, err)
	}
	defer buf.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return putBytes(ctx, p.objects, p.s3.Bucket, objectPath, buf.GetBytes())
}
