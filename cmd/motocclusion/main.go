package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/LdDl/mot-eval/internal/logger"
	"github.com/LdDl/mot-eval/motio"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	var input, output, mode string
	var workers int
	flag.StringVar(&input, "input", "", "Tracking results file: frame,id,x,y,w,h,...")
	flag.StringVar(&output, "output", "", "Output CSV file. Standard output when empty")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "Max goroutines per frame computation")
	flag.StringVar(&mode, "mode", "debug", "Logging mode: debug or release")
	flag.Parse()

	if input == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	log, err := logger.New(mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	if err := run(log, input, output, workers); err != nil {
		log.Error("occlusion report failed", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
}

func run(log *zap.Logger, input, output string, workers int) error {
	records, err := motio.ReadResultsFile(input)
	if err != nil {
		return err
	}
	frames := motio.GroupByFrame(records)
	log.Info("results loaded", zap.String("file", input), zap.Int("records", len(records)), zap.Int("frames", len(frames)))

	rows, skipped, err := motio.OcclusionReport(frames, workers)
	if err != nil {
		return err
	}
	for _, rec := range skipped {
		log.Warn("degenerate box skipped",
			zap.Int("frame", rec.Frame),
			zap.Int("id", rec.ID),
			zap.Float64("w", rec.Box.Width),
			zap.Float64("h", rec.Box.Height))
	}

	if output == "" {
		if err := motio.WriteOcclusionCSV(os.Stdout, rows); err != nil {
			return err
		}
	} else if err := writeReportFile(output, rows); err != nil {
		return err
	}
	log.Info("report written", zap.Int("rows", len(rows)), zap.Int("skipped", len(skipped)))
	return nil
}

// writeReportFile writes report and reports failed close, since buffered data is flushed there
func writeReportFile(path string, rows []motio.OcclusionRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Can't create %s", path)
	}
	if err := motio.WriteOcclusionCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "Can't close %s", path)
	}
	return nil
}
