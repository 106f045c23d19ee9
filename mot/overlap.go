package mot

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEmptyInput is returned when a collection or an index selection has no boxes
	ErrEmptyInput = errors.New("empty input")
	// ErrIndexOutOfRange is returned when a selection index does not address a box
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidBox is returned for boxes with non-positive width/height or NaN/Inf values
	ErrInvalidBox = errors.New("invalid box")
)

// OverlapResult holds pairwise ratios between two box collections.
// Rows follow the (selected) first collection, columns the (selected) second one.
type OverlapResult struct {
	// Intersection over Union
	Overlap *mat.Dense
	// Intersection divided by the area of the box from the first collection
	Occlusion1 *mat.Dense
	// Intersection divided by the area of the box from the second collection
	Occlusion2 *mat.Dense
}

// Rows returns number of boxes selected from the first collection
func (res *OverlapResult) Rows() int {
	r, _ := res.Overlap.Dims()
	return r
}

// Cols returns number of boxes selected from the second collection
func (res *OverlapResult) Cols() int {
	_, c := res.Overlap.Dims()
	return c
}

type overlapOptions struct {
	indices1 []int
	indices2 []int
	workers  int
}

// OverlapOption configures ComputeOverlapOcclusion
type OverlapOption func(*overlapOptions)

// WithIndices1 selects (and orders) boxes of the first collection. Without it every box is used.
func WithIndices1(indices ...int) OverlapOption {
	return func(opts *overlapOptions) {
		opts.indices1 = append(make([]int, 0, len(indices)), indices...)
	}
}

// WithIndices2 selects (and orders) boxes of the second collection. Without it every box is used.
func WithIndices2(indices ...int) OverlapOption {
	return func(opts *overlapOptions) {
		opts.indices2 = append(make([]int, 0, len(indices)), indices...)
	}
}

// WithWorkers sets max number of goroutines computing rows. Values below 2 mean sequential computation.
func WithWorkers(n int) OverlapOption {
	return func(opts *overlapOptions) {
		opts.workers = n
	}
}

// ComputeOverlapOcclusion calculates overlap ratios and occlusion ratios between
// every selected box of boxes1 and every selected box of boxes2.
//
// Boxes are treated as inclusive pixel ranges: a box (x, y, w, h) spans x..x+w-1
// and y..y+h-1. Caller's slices are never modified.
//
// Selected boxes with non-positive width/height or NaN/Inf values are rejected with ErrInvalidBox,
// so every returned ratio is finite and lies in [0, 1].
func ComputeOverlapOcclusion(boxes1, boxes2 []Rectangle, options ...OverlapOption) (*OverlapResult, error) {
	opts := overlapOptions{workers: 1}
	for _, option := range options {
		option(&opts)
	}

	bbs1, err := selectBoxes(boxes1, opts.indices1)
	if err != nil {
		return nil, errors.Wrap(err, "first collection")
	}
	bbs2, err := selectBoxes(boxes2, opts.indices2)
	if err != nil {
		return nil, errors.Wrap(err, "second collection")
	}

	// Areas must come from width and height, so take them before switching to corners
	area1, corners1 := areasAndCorners(bbs1)
	area2, corners2 := areasAndCorners(bbs2)

	rows, cols := len(bbs1), len(bbs2)
	res := &OverlapResult{
		Overlap:    mat.NewDense(rows, cols, nil),
		Occlusion1: mat.NewDense(rows, cols, nil),
		Occlusion2: mat.NewDense(rows, cols, nil),
	}

	fillRow := func(i int) {
		for j := 0; j < cols; j++ {
			ov, occ1, occ2 := overlapOcclusionCorners(corners1[i], corners2[j], area1[i], area2[j])
			res.Overlap.Set(i, j, ov)
			res.Occlusion1.Set(i, j, occ1)
			res.Occlusion2.Set(i, j, occ2)
		}
	}

	if opts.workers < 2 || rows < 2 {
		for i := 0; i < rows; i++ {
			fillRow(i)
		}
		return res, nil
	}

	// Each goroutine writes its own row only
	var g errgroup.Group
	g.SetLimit(opts.workers)
	for i := 0; i < rows; i++ {
		i := i
		g.Go(func() error {
			fillRow(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// selectBoxes copies boxes addressed by indices (or all boxes when indices is nil) and validates them
func selectBoxes(boxes []Rectangle, indices []int) ([]Rectangle, error) {
	if indices == nil {
		if len(boxes) == 0 {
			return nil, errors.Wrap(ErrEmptyInput, "no boxes")
		}
		selected := make([]Rectangle, len(boxes))
		copy(selected, boxes)
		for i := range selected {
			if selected[i].IsDegenerate() {
				return nil, errors.Wrapf(ErrInvalidBox, "box %d: %+v", i, selected[i])
			}
		}
		return selected, nil
	}
	if len(indices) == 0 {
		return nil, errors.Wrap(ErrEmptyInput, "no indices")
	}
	selected := make([]Rectangle, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(boxes) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d for %d boxes", idx, len(boxes))
		}
		if boxes[idx].IsDegenerate() {
			return nil, errors.Wrapf(ErrInvalidBox, "box %d: %+v", idx, boxes[idx])
		}
		selected[i] = boxes[idx]
	}
	return selected, nil
}

func areasAndCorners(boxes []Rectangle) ([]float64, []Corners) {
	areas := make([]float64, len(boxes))
	corners := make([]Corners, len(boxes))
	for i, box := range boxes {
		areas[i] = box.Area()
		corners[i] = box.Corners()
	}
	return areas, corners
}
