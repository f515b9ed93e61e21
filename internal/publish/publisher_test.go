package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/video/videotest"
)

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string]string
	failOn  string
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, name string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if name == f.failOn {
		return minio.UploadInfo{}, errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	if int64(len(data)) != size {
		return minio.UploadInfo{}, errors.New("size mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+name] = opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: size}, nil
}

type fakeProducer struct {
	topic    string
	messages [][]byte
}

func (f *fakeProducer) Publish(topic string, body []byte) error {
	f.topic = topic
	f.messages = append(f.messages, body)
	return nil
}

func train() *model.TrainAnalysis {
	return &model.TrainAnalysis{
		TrainId: "T7",
		RunId:   "run-7",
		Coaches: []*model.CoachAnalysis{
			{
				Segment:   model.CoachSegment{Index: 1, Start: 0, End: 40, Type: model.CoachTypeEngine},
				Status:    model.CoachStatusComplete,
				Keyframes: []model.Keyframe{{Index: 0, Image: videotest.Uniform(30)}},
				Annotated: []gocv.Mat{videotest.Uniform(30)},
				ComponentTotals: model.ComponentTotals{
					DoorsClosed: 2,
					Engines:     []model.BBox{},
					Wagons:      []model.BBox{{W: 100, H: 60}},
				},
			},
			{
				Segment: model.CoachSegment{Index: 2, Start: 40, End: 80, Type: model.CoachTypeWagon},
				Status:  model.CoachStatusFailed,
				Error:   "no readable frame",
			},
		},
	}
}

func TestPublisherConsume(t *testing.T) {
	objects := &fakeObjects{objects: map[string]string{}}
	producer := &fakeProducer{}
	p := &Publisher{
		s3:       S3Options{Enabled: true, Bucket: "railscan", Endpoint: "minio:9000"},
		topic:    "railscan-coaches",
		objects:  objects,
		producer: producer,
		stop:     func() {},
	}
	ta := train()
	defer ta.Close()

	require.NoError(t, p.Consume(context.Background(), ta))

	assert.Equal(t, map[string]string{
		"railscan/T7/1/frames/T7_1_001.jpg":              "image/jpeg",
		"railscan/T7/1/annotated/T7_1_annotated_001.jpg": "image/jpeg",
	}, objects.objects)

	assert.Equal(t, "railscan-coaches", producer.topic)
	require.Len(t, producer.messages, 2)

	var msg CoachMessage
	require.NoError(t, json.Unmarshal(producer.messages[0], &msg))
	assert.NotEmpty(t, msg.Id)
	assert.Equal(t, "run-7", msg.RunId)
	assert.Equal(t, "T7", msg.TrainId)
	assert.Equal(t, "http://minio:9000/railscan", msg.BaseUrl)
	assert.Equal(t, 2, msg.Report.DoorsClosed)
	assert.Equal(t, 1, msg.Report.WagonDetections)
	assert.Equal(t, []string{"/T7/1/frames/T7_1_001.jpg"}, msg.Frames)
	assert.Equal(t, []string{"/T7/1/annotated/T7_1_annotated_001.jpg"}, msg.Annotated)

	require.NoError(t, json.Unmarshal(producer.messages[1], &msg))
	assert.Equal(t, model.CoachStatusFailed, msg.Report.Status)
	assert.Empty(t, msg.Frames)
}

func TestPublisherUploadFailure(t *testing.T) {
	objects := &fakeObjects{objects: map[string]string{}, failOn: "T7/1/frames/T7_1_001.jpg"}
	producer := &fakeProducer{}
	p := &Publisher{s3: S3Options{Bucket: "b"}, objects: objects, producer: producer, stop: func() {}}
	ta := train()
	defer ta.Close()

	err := p.Consume(context.Background(), ta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	// the coach is still announced, without the missing frame
	require.Len(t, producer.messages, 2)
	var msg CoachMessage
	require.NoError(t, json.Unmarshal(producer.messages[0], &msg))
	assert.Empty(t, msg.Frames)
	assert.Len(t, msg.Annotated, 1)
}

func TestNewDisabled(t *testing.T) {
	p, err := New(S3Options{}, NSQOptions{})
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType("/a/b.JPG"))
	assert.Equal(t, "application/json", contentType("summary.json"))
	assert.Equal(t, "video/mp4", contentType("clip.mp4"))
	assert.Equal(t, "application/octet-stream", contentType("noext"))
}
