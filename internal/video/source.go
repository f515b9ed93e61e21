package video

import (
	"errors"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"railscan/internal/model"
)

// Source is a sequential frame decoder with optional seeking.
type Source interface {
	Stream() model.VideoStream
	// Read decodes the next frame into dst. It returns io.EOF once the
	// stream is exhausted and a *FrameDecodeError for a mid-stream failure.
	Read(dst *gocv.Mat) error
	// Skip advances n frames without retrieving them.
	Skip(n int) error
	Seek(frame int) error
	// Position is the index of the frame the next Read returns.
	Position() int
	Close() error
}

type captureSource struct {
	path    string
	capture *gocv.VideoCapture
	stream  model.VideoStream
	pos     int
}

// Open opens path for decoding. Failures are reported as *VideoAccessError.
func Open(path string) (Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, &VideoAccessError{Path: path, Err: err}
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, &VideoAccessError{Path: path, Err: errors.New("capture not opened")}
	}

	stream := model.VideoStream{
		FrameRate:  capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}
	if stream.FrameCount <= 0 {
		capture.Close()
		return nil, &VideoAccessError{Path: path, Err: fmt.Errorf("invalid frame count %d", stream.FrameCount)}
	}

	return &captureSource{
		path:    path,
		capture: capture,
		stream:  stream,
	}, nil
}

// WithSource opens path, hands the source to fn and closes it on every
// exit path of fn.
func WithSource(path string, fn func(src Source) error) error {
	src, err := Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	return fn(src)
}

// CheckReadable decodes the first frame of src and rewinds. A source whose first
// frame cannot be decoded is reported as *VideoAccessError.
func CheckReadable(src Source, path string) error {
	if err := moveTo(src, 0); err != nil {
		return &VideoAccessError{Path: path, Err: err}
	}
	frame := gocv.NewMat()
	defer frame.Close()
	if err := src.Read(&frame); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("stream has no frames")
		}
		return &VideoAccessError{Path: path, Err: err}
	}
	if err := src.Seek(0); err != nil {
		return &VideoAccessError{Path: path, Err: err}
	}
	return nil
}

func (c *captureSource) Stream() model.VideoStream {
	return c.stream
}

func (c *captureSource) Read(dst *gocv.Mat) error {
	if c.pos >= c.stream.FrameCount {
		return io.EOF
	}
	if ok := c.capture.Read(dst); !ok || dst.Empty() {
		return &FrameDecodeError{Frame: c.pos, Err: errors.New("decoder returned no frame")}
	}
	c.pos++
	return nil
}

func (c *captureSource) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if c.pos+n > c.stream.FrameCount {
		n = c.stream.FrameCount - c.pos
	}
	c.capture.Grab(n)
	c.pos += n
	return nil
}

func (c *captureSource) Seek(frame int) error {
	if frame < 0 || frame > c.stream.FrameCount {
		return fmt.Errorf("seek %d out of range [0, %d]", frame, c.stream.FrameCount)
	}
	c.capture.Set(gocv.VideoCapturePosFrames, float64(frame))
	c.pos = frame
	return nil
}

func (c *captureSource) Position() int {
	return c.pos
}

func (c *captureSource) Close() error {
	return c.capture.Close()
}
