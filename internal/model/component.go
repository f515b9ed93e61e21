package model

import "image"

type Category string

const (
	CategoryDoor   Category = "door"
	CategoryEngine Category = "engine"
	CategoryWagon  Category = "wagon"
)

type DoorStatus string

const (
	DoorOpen   DoorStatus = "open"
	DoorClosed DoorStatus = "closed"
)

// BBox is an axis-aligned rectangle in source-frame pixels.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func BBoxFromRect(r image.Rectangle) BBox {
	return BBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

func (b BBox) Area() int {
	return b.W * b.H
}

type DoorObservation struct {
	BBox   BBox       `json:"bbox"`
	Status DoorStatus `json:"status" jsonschema:"enum=open,enum=closed"`
	Area   float64    `json:"area"`
}

// ComponentRecord holds the detections of a single keyframe.
type ComponentRecord struct {
	FrameIndex int               `json:"frame_index"`
	Doors      []DoorObservation `json:"doors"`
	Engines    []BBox            `json:"engines"`
	Wagons     []BBox            `json:"wagons"`
}

// ComponentTotals is the per-coach reduction of ComponentRecords. Engines
// and Wagons pool every per-frame detection, so their lengths are
// detection counts rather than counts of distinct vehicles.
type ComponentTotals struct {
	DoorsOpen   int    `json:"doors_open"`
	DoorsClosed int    `json:"doors_closed"`
	Engines     []BBox `json:"engines"`
	Wagons      []BBox `json:"wagons"`
}
