// Package motio reads multi-object tracking results in MOTChallenge-like text format
// and builds per-frame occlusion reports on top of them.
package motio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/LdDl/mot-eval/mot"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

const (
	// minColumns is frame, id, x, y, w, h
	minColumns = 6
)

// ErrMalformedRecord is returned when results text can not be parsed
var ErrMalformedRecord = errors.New("malformed record")

// Record is a single tracked bounding box on a single frame
type Record struct {
	Frame int
	ID    int
	Box   mot.Rectangle
}

// Rect returns record's bounding box
func (rec Record) Rect() mot.Rectangle {
	return rec.Box
}

// resultRow is a raw CSV row. Frame and ID are floats since trackers often write "1.000000"
type resultRow struct {
	Frame  float64 `csv:"frame"`
	ID     float64 `csv:"id"`
	Left   float64 `csv:"x"`
	Top    float64 `csv:"y"`
	Width  float64 `csv:"w"`
	Height float64 `csv:"h"`
}

// ReadResults parses comma-delimited lines "frame,id,x,y,w,h[,...]" without header.
// Columns after the sixth one (confidence, world coordinates) are ignored.
// Every line must have the same number of columns. Blank and whitespace-only lines are skipped.
func ReadResults(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read results")
	}
	data, columns, err := dropBlankLines(data)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedRecord, "%v", err)
	}
	if columns == 0 {
		return []Record{}, nil
	}
	if columns < minColumns {
		return nil, errors.Wrapf(ErrMalformedRecord, "expected at least %d columns, got %d", minColumns, columns)
	}

	// Results files have no header, so give gocsv one
	header := []string{"frame", "id", "x", "y", "w", "h"}
	for i := minColumns; i < columns; i++ {
		header = append(header, fmt.Sprintf("extra_%d", i))
	}
	body := io.MultiReader(strings.NewReader(strings.Join(header, ",")+"\n"), bytes.NewReader(data))
	reader := csv.NewReader(body)
	reader.TrimLeadingSpace = true

	rows := []*resultRow{}
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, errors.Wrapf(ErrMalformedRecord, "%v", err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{
			Frame: int(row.Frame),
			ID:    int(row.ID),
			Box:   mot.NewRect(row.Left, row.Top, row.Width, row.Height),
		}
	}
	return records, nil
}

// ReadResultsFile is ReadResults over a file
func ReadResultsFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open results file %s", path)
	}
	defer f.Close()
	records, err := ReadResults(f)
	if err != nil {
		return nil, errors.Wrapf(err, "file %s", path)
	}
	return records, nil
}

// dropBlankLines removes empty and whitespace-only lines and returns number of
// comma separated fields on the first remaining line
func dropBlankLines(data []byte) ([]byte, int, error) {
	var cleaned bytes.Buffer
	columns := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if columns == 0 {
			columns = strings.Count(line, ",") + 1
		}
		cleaned.WriteString(line)
		cleaned.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return cleaned.Bytes(), columns, nil
}

// Frames is records grouped by frame index
type Frames map[int][]Record

// GroupByFrame groups records by frame keeping their order inside every frame
func GroupByFrame(records []Record) Frames {
	frames := make(Frames)
	for _, rec := range records {
		frames[rec.Frame] = append(frames[rec.Frame], rec)
	}
	return frames
}

// Get returns records of the given frame. It is nil for frames without records
func (frames Frames) Get(frame int) []Record {
	return frames[frame]
}

// Indices returns frame indices in ascending order
func (frames Frames) Indices() []int {
	indices := make([]int, 0, len(frames))
	for frame := range frames {
		indices = append(indices, frame)
	}
	sort.Ints(indices)
	return indices
}
