package video

import "gocv.io/x/gocv"

// ToGray writes the single-channel intensity image of src into dst. It
// reports false when src is empty or has a channel layout it cannot
// convert, leaving dst untouched.
func ToGray(src gocv.Mat, dst *gocv.Mat) bool {
	if src.Empty() {
		return false
	}
	switch src.Channels() {
	case 1:
		src.CopyTo(dst)
	case 3:
		gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		return false
	}
	return !dst.Empty()
}
