package video

import (
	"errors"
	"fmt"
)

var (
	// ErrEndOfWindow is returned by Window.Read once the segment is exhausted.
	ErrEndOfWindow = errors.New("end of window")
	// ErrNoFrames is returned when a segment yields no readable frame at all.
	ErrNoFrames = errors.New("no readable frame")
)

// VideoAccessError reports a source that cannot be opened or read from the
// start. It is fatal for the video it refers to.
type VideoAccessError struct {
	Path string
	Err  error
}

func (e *VideoAccessError) Error() string {
	return fmt.Sprintf("access video %s: %v", e.Path, e.Err)
}

func (e *VideoAccessError) Unwrap() error {
	return e.Err
}

// FrameDecodeError reports a read failure partway through a segment.
type FrameDecodeError struct {
	Frame int
	Err   error
}

func (e *FrameDecodeError) Error() string {
	return fmt.Sprintf("decode frame %d: %v", e.Frame, e.Err)
}

func (e *FrameDecodeError) Unwrap() error {
	return e.Err
}

func IsVideoAccess(err error) bool {
	var target *VideoAccessError
	return errors.As(err, &target)
}

func IsFrameDecode(err error) bool {
	var target *FrameDecodeError
	return errors.As(err, &target)
}
