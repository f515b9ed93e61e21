package video

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"railscan/internal/model"
)

const clipCodec = "mp4v"

// ExtractClip re-encodes the frames of seg from the video at path into out.
// It uses its own decoder so it can run alongside analysis of the same file.
func ExtractClip(ctx context.Context, path string, seg model.CoachSegment, out string) error {
	return WithSource(path, func(src Source) error {
		stream := src.Stream()
		writer, err := gocv.VideoWriterFile(out, clipCodec, stream.FrameRate, stream.Width, stream.Height, true)
		if err != nil {
			return fmt.Errorf("create clip writer %s: %w", out, err)
		}
		defer writer.Close()
		if !writer.IsOpened() {
			return fmt.Errorf("clip writer %s not opened", out)
		}

		window, err := NewWindow(src, seg)
		if err != nil {
			return err
		}

		frame := gocv.NewMat()
		defer frame.Close()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := window.Read(&frame); err != nil {
				if errors.Is(err, ErrEndOfWindow) {
					return nil
				}
				return err
			}
			if err := writer.Write(frame); err != nil {
				return fmt.Errorf("write clip frame: %w", err)
			}
		}
	})
}
