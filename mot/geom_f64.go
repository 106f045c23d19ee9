package mot

import (
	"image"
	"math"
)

// Rectangle is a bounding box given by its top-left corner and its size.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Corners is a bounding box given by its inclusive top-left and bottom-right pixels.
type Corners struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Area returns width multiplied by height
func (rect Rectangle) Area() float64 {
	return rect.Width * rect.Height
}

// Corners returns the pixel-grid corner form: a box of width w starting at x
// covers pixels x..x+w-1.
func (rect Rectangle) Corners() Corners {
	return Corners{
		X1: rect.X,
		Y1: rect.Y,
		X2: rect.X + rect.Width - 1,
		Y2: rect.Y + rect.Height - 1,
	}
}

// IsDegenerate reports whether the box has no positive area or holds NaN/Inf values.
// Boxes whose area or bottom-right corner are not representable as finite numbers
// (e.g. w*h overflowing to Inf or underflowing to 0) are degenerate too.
func (rect Rectangle) IsDegenerate() bool {
	if rect.Width <= 0 || rect.Height <= 0 {
		return true
	}
	for _, v := range [4]float64{rect.X, rect.Y, rect.Width, rect.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	// Union is a sum of two areas, so each one must stay below half of max float
	area := rect.Area()
	if !(area > 0) || area > math.MaxFloat64/2 {
		return true
	}
	corners := rect.Corners()
	if math.IsInf(corners.X2, 0) || math.IsInf(corners.Y2, 0) {
		return true
	}
	return false
}
