package video

import (
	"errors"
	"io"

	"gocv.io/x/gocv"

	"railscan/internal/model"
)

// Forward jumps up to this many frames are done by grabbing instead of
// seeking; container seeks land on keyframes and are slow for most codecs.
const maxLinearSkip = 300

// Window restricts a Source to the frame range of one coach segment.
type Window struct {
	src Source
	seg model.CoachSegment
}

// NewWindow positions src at the start of seg.
func NewWindow(src Source, seg model.CoachSegment) (*Window, error) {
	w := &Window{src: src, seg: seg}
	if err := w.Rewind(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Window) Segment() model.CoachSegment {
	return w.seg
}

func (w *Window) Len() int {
	return w.seg.Len()
}

// Read decodes the next frame of the window into dst and returns its source
// frame index.
func (w *Window) Read(dst *gocv.Mat) (int, error) {
	idx := w.src.Position()
	if idx >= w.seg.End {
		return idx, ErrEndOfWindow
	}
	if err := w.src.Read(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return idx, ErrEndOfWindow
		}
		return idx, err
	}
	return idx, nil
}

// Skip advances n frames, never past the end of the window.
func (w *Window) Skip(n int) error {
	if remaining := w.seg.End - w.src.Position(); n > remaining {
		n = remaining
	}
	return w.src.Skip(n)
}

func (w *Window) Rewind() error {
	return moveTo(w.src, w.seg.Start)
}

func moveTo(src Source, frame int) error {
	pos := src.Position()
	if frame == pos {
		return nil
	}
	if frame > pos && frame-pos <= maxLinearSkip {
		return src.Skip(frame - pos)
	}
	return src.Seek(frame)
}
