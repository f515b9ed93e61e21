// Package consumer turns analysis requests published on NSQ into pipeline
// jobs.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"railscan/internal/pipeline"
	"railscan/pkg/log"
)

type Options struct {
	Enabled   bool     `yaml:"enabled"`
	NSQDAddrs []string `yaml:"nsqdAddrs" validate:"required_if=Enabled true,dive,hostname_port"`
	Topic     string   `yaml:"topic" validate:"required_if=Enabled true"`
	Channel   string   `yaml:"channel" validate:"required_if=Enabled true"`
}

// AnalyzeMessage requests analysis of a video reachable from this host.
type AnalyzeMessage struct {
	Path    string `json:"path"`
	TrainId string `json:"train_id,omitempty"`
}

// Job validates the request. Train ids become output paths, so ids with
// path separators are rejected.
func (m *AnalyzeMessage) Job() (pipeline.Job, error) {
	job := pipeline.NewJob(m.Path, m.TrainId)
	if err := job.Validate(); err != nil {
		return pipeline.Job{}, err
	}
	return job, nil
}

type Submitter interface {
	Submit(job pipeline.Job) error
}

type Consumer struct {
	opts      Options
	ctx       context.Context
	cancel    context.CancelFunc
	consumer  *nsq.Consumer
	wg        sync.WaitGroup
	logger    *logrus.Entry
	submitter Submitter
}

func NewConsumer(parentCtx context.Context, opts Options, submitter Submitter) (*Consumer, error) {
	ctx, cancel := context.WithCancel(parentCtx)

	logger := log.GetLogger(ctx).WithField("component", "consumer")

	config := nsq.NewConfig()
	config.MsgTimeout = time.Minute
	config.MaxInFlight = 1
	config.MaxAttempts = 5

	consumer, err := nsq.NewConsumer(opts.Topic, opts.Channel, config)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	c := &Consumer{
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		consumer:  consumer,
		logger:    logger,
		submitter: submitter,
	}

	consumer.AddHandler(c)

	return c, nil
}

// HandleMessage submits the requested job. Malformed requests are
// finished without retry; a full queue requeues the message.
func (c *Consumer) HandleMessage(message *nsq.Message) error {
	c.logger.Debugf("Received NSQ message: %s", string(message.Body))
	message.DisableAutoResponse()

	job, err := decode(message.Body)
	if err != nil {
		c.logger.WithError(err).Error("Dropping malformed analysis request")
		message.Finish()
		return nil
	}

	if err := c.submitter.Submit(job); err != nil {
		c.logger.WithError(err).Warnf("Failed to queue %s, requeueing", job.TrainId)
		message.Requeue(10 * time.Second)
		return nil
	}

	message.Finish()
	return nil
}

func decode(body []byte) (pipeline.Job, error) {
	var msg AnalyzeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return pipeline.Job{}, err
	}
	return msg.Job()
}

func (c *Consumer) Start() error {
	c.logger.Infof("Starting NSQ consumer on %s/%s", c.opts.Topic, c.opts.Channel)

	err := c.consumer.ConnectToNSQDs(c.opts.NSQDAddrs)
	if err != nil {
		return fmt.Errorf("failed to connect to NSQs: %w", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		c.consumer.Stop()
		<-c.consumer.StopChan
	}()

	return nil
}

func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
}
