package classify

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"railscan/internal/model"
	"railscan/internal/video/videotest"
)

// grayCanvas returns a rows x cols intensity frame of value bg with a
// checkerboard of lo/hi 5px cells painted over r.
func grayCanvas(rows, cols int, bg uint8, r image.Rectangle, lo, hi uint8) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(bg), 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := lo
			if ((x-r.Min.X)/5+(y-r.Min.Y)/5)%2 == 1 {
				v = hi
			}
			m.SetUCharAt(y, x, v)
		}
	}
	return m
}

func TestRuleMatch(t *testing.T) {
	rules := DefaultOptions().Rules()

	cases := []struct {
		name   string
		rule   Rule
		box    model.BBox
		area   float64
		expect bool
	}{
		{"door inside band", rules.Door, model.BBox{W: 80, H: 75}, 6000, true},
		{"door too small", rules.Door, model.BBox{W: 30, H: 30}, 900, false},
		{"door lower bound is exclusive", rules.Door, model.BBox{W: 40, H: 25}, 1000, false},
		{"door too large", rules.Door, model.BBox{W: 120, H: 100}, 12000, false},
		{"door too narrow", rules.Door, model.BBox{W: 20, H: 100}, 2000, false},
		{"door too wide", rules.Door, model.BBox{W: 300, H: 20}, 6000, false},
		{"engine", rules.Engine, model.BBox{W: 200, H: 100}, 20000, true},
		{"engine too tall", rules.Engine, model.BBox{W: 100, H: 250}, 25000, false},
		{"engine at threshold", rules.Engine, model.BBox{W: 150, H: 100}, 15000, false},
		{"wagon", rules.Wagon, model.BBox{W: 100, H: 80}, 8000, true},
		{"wagon too large", rules.Wagon, model.BBox{W: 200, H: 100}, 20000, false},
		{"wagon too narrow", rules.Wagon, model.BBox{W: 20, H: 300}, 6000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.rule.Match(tc.box, tc.area))
		})
	}
}

func TestVariance(t *testing.T) {
	flat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 0, 0, 0), 20, 20, gocv.MatTypeCV8UC1)
	defer flat.Close()
	assert.InDelta(t, 0, Variance(flat), 1e-9)

	board := grayCanvas(20, 20, 0, image.Rect(0, 0, 20, 20), 0, 80)
	defer board.Close()
	assert.InDelta(t, 1600, Variance(board), 1e-6)

	empty := gocv.NewMat()
	defer empty.Close()
	assert.Zero(t, Variance(empty))
}

func TestDoorStatus(t *testing.T) {
	region := image.Rect(50, 50, 130, 125)
	frame := grayCanvas(200, 200, 0, region, 0, 80)
	defer frame.Close()
	flat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(120, 0, 0, 0), 200, 200, gocv.MatTypeCV8UC1)
	defer flat.Close()

	box := model.BBoxFromRect(region)
	assert.Equal(t, model.DoorOpen, DoorStatus(frame, box, 1000))
	assert.Equal(t, model.DoorClosed, DoorStatus(frame, box, 2000))
	assert.Equal(t, model.DoorClosed, DoorStatus(flat, box, 1000))
	assert.Equal(t, model.DoorClosed, DoorStatus(frame, model.BBox{X: 300, Y: 300, W: 10, H: 10}, 1000), "crop outside the frame")
	assert.Equal(t, model.DoorClosed, DoorStatus(frame, model.BBox{X: 10, Y: 10}, 1000), "zero-area crop")
}

func TestClassifyOpenDoorCandidate(t *testing.T) {
	region := image.Rect(50, 50, 130, 125) // 80x75
	frame := grayCanvas(200, 200, 0, region, 0, 80)
	defer frame.Close()

	det := NewContourDetector(DefaultOptions())
	rec := det.Classify(frame, []Candidate{{BBox: model.BBoxFromRect(region), Area: 6000}})

	require.Len(t, rec.Doors, 1)
	assert.Equal(t, model.DoorOpen, rec.Doors[0].Status)
	assert.Equal(t, 6000.0, rec.Doors[0].Area)
	assert.Equal(t, model.BBox{X: 50, Y: 50, W: 80, H: 75}, rec.Doors[0].BBox)
	assert.Empty(t, rec.Engines)
	// the medium band overlaps the door band
	assert.Len(t, rec.Wagons, 1)

	totals := Fold([]model.ComponentRecord{rec})
	assert.Equal(t, 1, totals.DoorsOpen)
	assert.Zero(t, totals.DoorsClosed)
}

func TestClassifyLargeCandidate(t *testing.T) {
	frame := gocv.NewMatWithSize(400, 400, gocv.MatTypeCV8UC1)
	defer frame.Close()

	det := NewContourDetector(DefaultOptions())
	rec := det.Classify(frame, []Candidate{{BBox: model.BBox{X: 10, Y: 10, W: 300, H: 100}, Area: 30000}})

	assert.Empty(t, rec.Doors)
	assert.Len(t, rec.Engines, 1)
	assert.Empty(t, rec.Wagons)
}

func TestDetectBlankFrame(t *testing.T) {
	frame := videotest.Canvas(240, 320)
	defer frame.Close()

	rec, err := NewContourDetector(DefaultOptions()).Detect(context.Background(), frame)
	require.NoError(t, err)
	assert.Empty(t, rec.Doors)
	assert.Empty(t, rec.Engines)
	assert.Empty(t, rec.Wagons)
}

func TestDetectRectangle(t *testing.T) {
	frame := videotest.Canvas(240, 320)
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(100, 80, 180, 160), videotest.White, -1)

	rec, err := NewContourDetector(DefaultOptions()).Detect(context.Background(), frame)
	require.NoError(t, err)
	require.NotEmpty(t, rec.Doors)

	totals := Fold([]model.ComponentRecord{rec})
	assert.Equal(t, len(rec.Doors), totals.DoorsOpen+totals.DoorsClosed)
}

func TestDetectMalformedFrame(t *testing.T) {
	twoChannel := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8UC2)
	defer twoChannel.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	det := NewContourDetector(DefaultOptions())
	for _, frame := range []gocv.Mat{twoChannel, empty} {
		rec, err := det.Detect(context.Background(), frame)
		require.NoError(t, err)
		assert.Empty(t, rec.Doors)
		assert.Empty(t, rec.Engines)
		assert.Empty(t, rec.Wagons)
	}
}

func TestFold(t *testing.T) {
	records := []model.ComponentRecord{
		{
			FrameIndex: 0,
			Doors: []model.DoorObservation{
				{Status: model.DoorOpen},
				{Status: model.DoorClosed},
			},
			Engines: []model.BBox{{X: 1, W: 10, H: 10}},
		},
		{
			FrameIndex: 12,
			Doors:      []model.DoorObservation{{Status: model.DoorClosed}},
			Engines:    []model.BBox{{X: 2, W: 10, H: 10}},
			Wagons:     []model.BBox{{X: 3, W: 10, H: 10}},
		},
		{FrameIndex: 24},
	}

	totals := Fold(records)
	assert.Equal(t, 1, totals.DoorsOpen)
	assert.Equal(t, 2, totals.DoorsClosed)
	assert.Equal(t, []model.BBox{{X: 1, W: 10, H: 10}, {X: 2, W: 10, H: 10}}, totals.Engines)
	assert.Equal(t, []model.BBox{{X: 3, W: 10, H: 10}}, totals.Wagons)

	empty := Fold(nil)
	assert.Zero(t, empty.DoorsOpen+empty.DoorsClosed)
	assert.NotNil(t, empty.Engines)
	assert.NotNil(t, empty.Wagons)
}

func TestAnnotateLeavesSourceUntouched(t *testing.T) {
	frame := videotest.Canvas(240, 320)
	defer frame.Close()
	rec := model.ComponentRecord{
		Doors:   []model.DoorObservation{{BBox: model.BBox{X: 20, Y: 40, W: 50, H: 60}, Status: model.DoorOpen}},
		Engines: []model.BBox{{X: 100, Y: 100, W: 150, H: 80}},
		Wagons:  []model.BBox{{X: 200, Y: 20, W: 100, H: 60}},
	}

	annotated := Annotate(frame, rec)
	defer annotated.Close()

	assert.Equal(t, frame.Rows(), annotated.Rows())
	assert.Equal(t, frame.Cols(), annotated.Cols())
	assert.Zero(t, frame.Sum().Val1+frame.Sum().Val2+frame.Sum().Val3)
	// open door outline is green in BGR
	assert.Equal(t, uint8(255), annotated.GetVecbAt(40, 40)[1])
	assert.Zero(t, annotated.GetVecbAt(40, 40)[2])
}

func TestDecodeDetections(t *testing.T) {
	detections := []float32{
		10, 20, 60, 120, 0.9, 0, // open door
		70, 20, 110, 120, 0.8, 1, // closed door
		0, 0, 300, 150, 0.95, 2, // engine
		0, 0, 200, 100, 0.7, 3, // wagon
		0, 0, 50, 50, 0.2, 2, // below confidence
		0, 0, 50, 50, 0.9, 9, // unknown class
		50, 50, 40, 60, 0.9, 0, // degenerate
		1, 2, 3, // truncated row
	}

	rec := decodeDetections(detections, 0.5)
	require.Len(t, rec.Doors, 2)
	assert.Equal(t, model.DoorObservation{BBox: model.BBox{X: 10, Y: 20, W: 50, H: 100}, Status: model.DoorOpen, Area: 5000}, rec.Doors[0])
	assert.Equal(t, model.DoorClosed, rec.Doors[1].Status)
	assert.Equal(t, []model.BBox{{X: 0, Y: 0, W: 300, H: 150}}, rec.Engines)
	assert.Equal(t, []model.BBox{{X: 0, Y: 0, W: 200, H: 100}}, rec.Wagons)
}

func TestNewDetector(t *testing.T) {
	det, err := NewDetector(context.Background(), DefaultOptions())
	require.NoError(t, err)
	assert.IsType(t, &ContourDetector{}, det)

	opts := DefaultOptions()
	opts.Strategy = "magic"
	_, err = NewDetector(context.Background(), opts)
	assert.Error(t, err)

	opts.Strategy = StrategyTriton
	opts.Triton.ServerAddr = ""
	_, err = NewDetector(context.Background(), opts)
	assert.Error(t, err)
}
