package keyframe

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Structural similarity parameters: 7x7 uniform window, sample covariance,
// 8-bit data range.
const (
	ssimWindow    = 7
	ssimK1        = 0.01
	ssimK2        = 0.03
	ssimDataRange = 255.0
)

// Similarity returns the mean structural similarity of two single-channel
// intensity images, clamped to [0, 1] where 1 means identical. candidate is
// resampled to the size of ref when they differ. Inputs that cannot be
// compared (empty, multi-channel, smaller than the window) score 0.
func Similarity(ref, candidate gocv.Mat) float64 {
	if ref.Empty() || candidate.Empty() || ref.Channels() != 1 || candidate.Channels() != 1 {
		return 0
	}
	if ref.Rows() < ssimWindow || ref.Cols() < ssimWindow {
		return 0
	}

	cand := candidate
	if candidate.Rows() != ref.Rows() || candidate.Cols() != ref.Cols() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(candidate, &resized, image.Pt(ref.Cols(), ref.Rows()), 0, 0, gocv.InterpolationLinear)
		if resized.Empty() {
			return 0
		}
		cand = resized
	}

	score := ssim(ref, cand)
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return math.Min(score, 1)
}

func ssim(a, b gocv.Mat) float64 {
	var mats []*gocv.Mat
	newMat := func() *gocv.Mat {
		m := gocv.NewMat()
		mats = append(mats, &m)
		return &m
	}
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()

	ksize := image.Pt(ssimWindow, ssimWindow)
	mean := func(src *gocv.Mat) *gocv.Mat {
		dst := newMat()
		gocv.Blur(*src, dst, ksize)
		return dst
	}
	mul := func(p, q *gocv.Mat) *gocv.Mat {
		dst := newMat()
		gocv.Multiply(*p, *q, dst)
		return dst
	}
	// covNorm*(E[pq] - E[p]E[q])
	cov := func(epq, ep, eq *gocv.Mat) *gocv.Mat {
		dst := newMat()
		gocv.Subtract(*epq, *mul(ep, eq), dst)
		dst.MultiplyFloat(float32(ssimWindow * ssimWindow) / float32(ssimWindow*ssimWindow-1))
		return dst
	}

	x := newMat()
	a.ConvertTo(x, gocv.MatTypeCV32F)
	y := newMat()
	b.ConvertTo(y, gocv.MatTypeCV32F)

	ux, uy := mean(x), mean(y)
	vx := cov(mean(mul(x, x)), ux, ux)
	vy := cov(mean(mul(y, y)), uy, uy)
	vxy := cov(mean(mul(x, y)), ux, uy)

	c1 := float32(math.Pow(ssimK1*ssimDataRange, 2))
	c2 := float32(math.Pow(ssimK2*ssimDataRange, 2))

	a1 := mul(ux, uy)
	a1.MultiplyFloat(2)
	a1.AddFloat(c1)
	a2 := newMat()
	vxy.CopyTo(a2)
	a2.MultiplyFloat(2)
	a2.AddFloat(c2)

	b1 := newMat()
	gocv.Add(*mul(ux, ux), *mul(uy, uy), b1)
	b1.AddFloat(c1)
	b2 := newMat()
	gocv.Add(*vx, *vy, b2)
	b2.AddFloat(c2)

	s := newMat()
	gocv.Divide(*mul(a1, a2), *mul(b1, b2), s)

	// the window border is filtered from reflected pixels; drop it
	pad := (ssimWindow - 1) / 2
	roi := s.Region(image.Rect(pad, pad, s.Cols()-pad, s.Rows()-pad))
	defer roi.Close()
	return roi.Mean().Val1
}
