package mot

// OverlapOcclusion calculates overlap (Intersection over Union) and both
// occlusion ratios between two rectangles using the inclusive pixel-grid convention.
// Inputs are not validated: degenerate rectangles give NaN or Inf.
func OverlapOcclusion(r1, r2 Rectangle) (overlap, occlusion1, occlusion2 float64) {
	area1 := r1.Area()
	area2 := r2.Area()
	return overlapOcclusionCorners(r1.Corners(), r2.Corners(), area1, area2)
}

func overlapOcclusionCorners(c1, c2 Corners, area1, area2 float64) (float64, float64, float64) {
	xA := maxFloat64(c1.X1, c2.X1)
	yA := maxFloat64(c1.Y1, c2.Y1)
	xB := minFloat64(c1.X2, c2.X2)
	yB := minFloat64(c1.Y2, c2.Y2)

	interW := maxFloat64(0, xB-xA+1)
	interH := maxFloat64(0, yB-yA+1)
	interArea := interW * interH

	unionArea := area1 + area2 - interArea
	return interArea / unionArea, interArea / area1, interArea / area2
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
