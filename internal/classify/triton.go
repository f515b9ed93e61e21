package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Trendyol/go-triton-client/base"
	tritonGrpc "github.com/Trendyol/go-triton-client/client/grpc"
	"gocv.io/x/gocv"

	"railscan/internal/model"
)

// Class ids emitted by the component model.
var tritonLabels = map[int]string{
	0: "door_open",
	1: "door_closed",
	2: "engine",
	3: "wagon",
}

// TritonDetector sends frames to a detection model served by Triton. The
// model takes a raw HxWx3 UINT8 frame and returns DETECTIONS as rows of
// [x1, y1, x2, y2, confidence, class_id].
type TritonDetector struct {
	client base.Client
	opts   TritonOptions
}

func NewTritonDetector(ctx context.Context, opts TritonOptions) (*TritonDetector, error) {
	if opts.ServerAddr == "" || opts.ModelName == "" {
		return nil, errors.New("triton server address and model name are required")
	}
	client, err := tritonGrpc.NewClient(
		opts.ServerAddr,
		false, // verbose logging
		30,    // connection timeout in seconds
		30,    // network timeout in seconds
		false, // use ssl
		true,  // insecure connection
		nil,   // existing grpc connection
		nil,   // logger
	)
	if err != nil {
		return nil, err
	}

	d := &TritonDetector{client: client, opts: opts}
	if err := d.ready(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *TritonDetector) ready(ctx context.Context) error {
	if isLive, err := d.client.IsServerLive(ctx, nil); err != nil {
		return err
	} else if !isLive {
		return errors.New("triton server is not live")
	}

	if isReady, err := d.client.IsServerReady(ctx, nil); err != nil {
		return err
	} else if !isReady {
		return errors.New("triton server is not ready")
	}

	if isReady, err := d.client.IsModelReady(ctx, d.opts.ModelName, d.opts.ModelVersion, nil); err != nil {
		return err
	} else if !isReady {
		return fmt.Errorf("triton model %s is not ready", d.opts.ModelName)
	}
	return nil
}

func (d *TritonDetector) Detect(ctx context.Context, frame gocv.Mat) (model.ComponentRecord, error) {
	if frame.Empty() || frame.Channels() != 3 {
		return model.ComponentRecord{}, nil
	}

	frameInput := tritonGrpc.NewInferInput("FRAME", "BYTES", []int64{int64(frame.Rows()), int64(frame.Cols()), 3}, nil)
	if err := frameInput.SetData(frame.ToBytes(), true); err != nil {
		return model.ComponentRecord{}, fmt.Errorf("failed to set FRAME input data: %v", err)
	}
	frameInput.SetDatatype("UINT8")

	outputs := []base.InferOutput{
		tritonGrpc.NewInferOutput("DETECTIONS", map[string]any{"binary_data": false}),
	}

	response, err := d.client.Infer(ctx, d.opts.ModelName, d.opts.ModelVersion, []base.InferInput{frameInput}, outputs, nil)
	if err != nil {
		return model.ComponentRecord{}, fmt.Errorf("inference failed: %v", err)
	}

	detections, err := response.AsFloat32Slice("DETECTIONS")
	if err != nil {
		return model.ComponentRecord{}, fmt.Errorf("failed to get detection data: %v", err)
	}
	return decodeDetections(detections, d.opts.MinConfidence), nil
}

// decodeDetections maps flat detection rows onto a component record. Rows
// below minConfidence, with an unknown class or a degenerate box are dropped.
func decodeDetections(detections []float32, minConfidence float32) model.ComponentRecord {
	var rec model.ComponentRecord
	for i := 0; i+5 < len(detections); i += 6 {
		x1, y1 := int(detections[i]), int(detections[i+1])
		x2, y2 := int(detections[i+2]), int(detections[i+3])
		confidence := detections[i+4]
		classID := int(detections[i+5])

		if confidence < minConfidence || x2 <= x1 || y2 <= y1 {
			continue
		}
		box := model.BBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}

		switch tritonLabels[classID] {
		case "door_open":
			rec.Doors = append(rec.Doors, model.DoorObservation{BBox: box, Status: model.DoorOpen, Area: float64(box.Area())})
		case "door_closed":
			rec.Doors = append(rec.Doors, model.DoorObservation{BBox: box, Status: model.DoorClosed, Area: float64(box.Area())})
		case "engine":
			rec.Engines = append(rec.Engines, box)
		case "wagon":
			rec.Wagons = append(rec.Wagons, box)
		}
	}
	return rec
}
