package motio

import (
	"io"

	"github.com/LdDl/mot-eval/mot"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// OcclusionRow describes how much a track is covered by other tracks on a frame
type OcclusionRow struct {
	Frame int `csv:"frame"`
	ID    int `csv:"id"`
	// Max share of track's box covered by a single other track
	Occlusion float64 `csv:"occlusion"`
	// Overlap (IoU) with the track giving max occlusion
	Overlap float64 `csv:"overlap"`
	// Track giving max occlusion, -1 if none
	Occluder int `csv:"occluder"`
}

// OcclusionReport calculates occlusion of every track by other tracks frame by frame.
// Records with degenerate boxes can not be measured: they are skipped and returned as the second value.
func OcclusionReport(frames Frames, workers int) ([]OcclusionRow, []Record, error) {
	rows := make([]OcclusionRow, 0)
	skipped := make([]Record, 0)
	for _, frame := range frames.Indices() {
		records := frames.Get(frame)
		boxes := make([]mot.Rectangle, len(records))
		valid := make([]int, 0, len(records))
		for i, rec := range records {
			boxes[i] = rec.Rect()
			if rec.Box.IsDegenerate() {
				skipped = append(skipped, rec)
				continue
			}
			valid = append(valid, i)
		}
		if len(valid) == 0 {
			continue
		}
		res, err := mot.ComputeOverlapOcclusion(
			boxes, boxes,
			mot.WithIndices1(valid...),
			mot.WithIndices2(valid...),
			mot.WithWorkers(workers),
		)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Can't compute occlusion on frame %d", frame)
		}
		for i, recIdx := range valid {
			row := OcclusionRow{
				Frame:    frame,
				ID:       records[recIdx].ID,
				Occluder: -1,
			}
			for j, otherIdx := range valid {
				if i == j {
					continue
				}
				occ := res.Occlusion1.At(i, j)
				if occ > row.Occlusion {
					row.Occlusion = occ
					row.Overlap = res.Overlap.At(i, j)
					row.Occluder = records[otherIdx].ID
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, skipped, nil
}

// WriteOcclusionCSV writes report rows with a header line
func WriteOcclusionCSV(w io.Writer, rows []OcclusionRow) error {
	err := gocsv.Marshal(rows, w)
	if err != nil {
		return errors.Wrap(err, "Can't write occlusion report")
	}
	return nil
}
