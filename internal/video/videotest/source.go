// Package videotest provides synthetic video sources for tests.
package videotest

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/video"
)

// FrameFunc renders frame i of a synthetic stream.
type FrameFunc func(i int) gocv.Mat

// Source is an in-memory video.Source. Frames are rendered on demand by
// Render; reads of frame FailAt (when >= 0) return a *video.FrameDecodeError.
type Source struct {
	Info   model.VideoStream
	Render FrameFunc
	FailAt int

	pos    int
	Reads  int
	Seeks  int
	Closed bool
}

var _ video.Source = (*Source)(nil)

func NewSource(frameCount int, fps float64, render FrameFunc) *Source {
	return &Source{
		Info: model.VideoStream{
			FrameRate:  fps,
			FrameCount: frameCount,
			Width:      64,
			Height:     64,
		},
		Render: render,
		FailAt: -1,
	}
}

func (s *Source) Stream() model.VideoStream {
	return s.Info
}

func (s *Source) Read(dst *gocv.Mat) error {
	if s.pos >= s.Info.FrameCount {
		return io.EOF
	}
	if s.pos == s.FailAt {
		return &video.FrameDecodeError{Frame: s.pos, Err: errors.New("synthetic decode failure")}
	}
	frame := s.Render(s.pos)
	defer frame.Close()
	frame.CopyTo(dst)
	s.pos++
	s.Reads++
	return nil
}

func (s *Source) Skip(n int) error {
	if s.pos+n > s.Info.FrameCount {
		n = s.Info.FrameCount - s.pos
	}
	s.pos += n
	return nil
}

func (s *Source) Seek(frame int) error {
	if frame < 0 || frame > s.Info.FrameCount {
		return fmt.Errorf("seek %d out of range", frame)
	}
	s.Seeks++
	s.pos = frame
	return nil
}

func (s *Source) Position() int {
	return s.pos
}

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Uniform returns a 64x64 BGR frame filled with a single intensity.
func Uniform(level uint8) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(level), float64(level), float64(level), 0), 64, 64, gocv.MatTypeCV8UC3)
}

// Checkerboard returns a 64x64 BGR frame of cell x cell squares alternating
// between lo and hi.
func Checkerboard(cell int, lo, hi uint8) gocv.Mat {
	m := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC1)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := lo
			if (x/cell+y/cell)%2 == 1 {
				v = hi
			}
			m.SetUCharAt(y, x, v)
		}
	}
	defer m.Close()
	bgr := gocv.NewMat()
	gocv.CvtColor(m, &bgr, gocv.ColorGrayToBGR)
	return bgr
}

// Canvas returns a black BGR frame of the given size.
func Canvas(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
