package classify

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"railscan/internal/model"
)

var (
	colorDoorOpen   = color.RGBA{G: 255, A: 255}
	colorDoorClosed = color.RGBA{R: 255, A: 255}
	colorEngine     = color.RGBA{B: 255, A: 255}
	colorWagon      = color.RGBA{R: 255, G: 255, A: 255}
	colorText       = color.RGBA{A: 255}
)

// Annotate returns a copy of frame with every detection of rec boxed and
// labelled. The caller owns the returned Mat.
func Annotate(frame gocv.Mat, rec model.ComponentRecord) gocv.Mat {
	annotated := frame.Clone()
	if annotated.Empty() {
		return annotated
	}

	for _, door := range rec.Doors {
		c := colorDoorClosed
		if door.Status == model.DoorOpen {
			c = colorDoorOpen
		}
		drawBox(&annotated, door.BBox, "Door: "+string(door.Status), c)
	}
	for _, box := range rec.Engines {
		drawBox(&annotated, box, "Engine", colorEngine)
	}
	for _, box := range rec.Wagons {
		drawBox(&annotated, box, "Wagon", colorWagon)
	}
	return annotated
}

func drawBox(dst *gocv.Mat, box model.BBox, label string, c color.RGBA) {
	labelSize := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.5, 1)
	x, y := box.X, box.Y
	// keep the label inside the frame for boxes touching the top edge
	if y-labelSize.Y-10 < 0 {
		y = box.Y + box.H + labelSize.Y + 10
	}

	gocv.Rectangle(dst, box.Rect(), c, 2)
	gocv.Rectangle(dst, image.Rect(x, y-labelSize.Y-10, x+labelSize.X, y), c, -1)
	gocv.PutText(dst, label, image.Pt(x, y-5), gocv.FontHersheySimplex, 0.5, colorText, 1)
}
