package classify

const (
	StrategyHeuristic = "heuristic"
	StrategyTriton    = "triton"
)

// Options tunes the component detectors. Areas are contour areas in source
// pixels.
type Options struct {
	Strategy string `yaml:"strategy" validate:"oneof=heuristic triton"`

	CannyLow  float32 `yaml:"cannyLow" validate:"gte=0"`
	CannyHigh float32 `yaml:"cannyHigh" validate:"gtfield=CannyLow"`

	DoorMinArea  float64 `yaml:"doorMinArea" validate:"gte=0"`
	DoorMaxArea  float64 `yaml:"doorMaxArea" validate:"gtfield=DoorMinArea"`
	WagonMinArea float64 `yaml:"wagonMinArea" validate:"gte=0"`
	// LargeObjectArea is the lower bound for engines and the upper bound
	// for wagons.
	LargeObjectArea float64 `yaml:"largeObjectArea" validate:"gtfield=WagonMinArea"`

	// Door crops with a greater intensity variance are reported open.
	VarianceThreshold float64 `yaml:"varianceThreshold" validate:"gte=0"`

	Triton TritonOptions `yaml:"triton"`
}

type TritonOptions struct {
	ServerAddr    string  `yaml:"serverAddr" validate:"omitempty,hostname_port"`
	ModelName     string  `yaml:"modelName"`
	ModelVersion  string  `yaml:"modelVersion"`
	MinConfidence float32 `yaml:"minConfidence" validate:"gte=0,lte=1"`
}

func DefaultOptions() Options {
	return Options{
		Strategy:          StrategyHeuristic,
		CannyLow:          50,
		CannyHigh:         150,
		DoorMinArea:       1000,
		DoorMaxArea:       10000,
		WagonMinArea:      5000,
		LargeObjectArea:   15000,
		VarianceThreshold: 1000,
		Triton: TritonOptions{
			ServerAddr:    "localhost:8001",
			ModelName:     "railscan_components",
			ModelVersion:  "1",
			MinConfidence: 0.5,
		},
	}
}

// Rules derives the geometric acceptance bands from the options.
func (o Options) Rules() Rules {
	return Rules{
		Door: Rule{
			MinArea:   o.DoorMinArea,
			MaxArea:   o.DoorMaxArea,
			MinAspect: 0.3,
			MaxAspect: 3,
		},
		Engine: Rule{
			MinArea:   o.LargeObjectArea,
			MinAspect: 0.5,
		},
		Wagon: Rule{
			MinArea:   o.WagonMinArea,
			MaxArea:   o.LargeObjectArea,
			MinAspect: 0.3,
		},
	}
}
