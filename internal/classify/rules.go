package classify

import "railscan/internal/model"

// Rule accepts a region whose area lies strictly inside (MinArea, MaxArea)
// and whose width lies strictly inside (MinAspect*h, MaxAspect*h). A zero
// MaxArea or MaxAspect leaves that side unbounded.
type Rule struct {
	MinArea   float64
	MaxArea   float64
	MinAspect float64
	MaxAspect float64
}

func (r Rule) Match(box model.BBox, area float64) bool {
	if area <= r.MinArea {
		return false
	}
	if r.MaxArea > 0 && area >= r.MaxArea {
		return false
	}
	w, h := float64(box.W), float64(box.H)
	if w <= r.MinAspect*h {
		return false
	}
	if r.MaxAspect > 0 && w >= r.MaxAspect*h {
		return false
	}
	return true
}

type Rules struct {
	Door   Rule
	Engine Rule
	Wagon  Rule
}
