// Package vis renders tracking results over raw sequence frames and writes
// annotated videos and/or annotated frame images.
package vis

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LdDl/mot-eval/motio"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// newSinkFunc opens video sink for the sequence
type newSinkFunc func(path string, width, height int, fps float64) (FrameSink, error)

// Visualizer draws every results file of a results set over its sequence frames
type Visualizer struct {
	cfg          *Config
	logger       *zap.Logger
	drawer       *Drawer
	newVideoSink newSinkFunc
}

// New creates visualizer. Results directory (and video directory when video is enabled)
// are created if they do not exist.
func New(cfg *Config, logger *zap.Logger) (*Visualizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid config")
	}
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "Can't create results directory %s", cfg.ResultsDir)
	}
	if cfg.EnableVideo {
		if err := os.MkdirAll(cfg.VideoDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "Can't create video directory %s", cfg.VideoDir)
		}
	}
	drawer, err := NewDrawer(cfg.Style)
	if err != nil {
		return nil, err
	}
	return &Visualizer{
		cfg:          cfg,
		logger:       logger,
		drawer:       drawer,
		newVideoSink: NewVideoSink,
	}, nil
}

// Run renders every results file found in <ResultsDir>/<ResultsName>/ in name order
func (v *Visualizer) Run(ctx context.Context) error {
	datasetPath := filepath.Join(v.cfg.ResultsDir, v.cfg.ResultsName)
	entries, err := os.ReadDir(datasetPath)
	if err != nil {
		return errors.Wrapf(err, "Can't list results in %s", datasetPath)
	}
	idx := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		idx++
		v.logger.Info("rendering results", zap.Int("dataset", idx), zap.String("file", entry.Name()))
		err := v.RenderSequence(ctx, filepath.Join(datasetPath, entry.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}

// RenderSequence draws single results file. Sequence name is the file name up to the first dot,
// raw frames are taken from <RawImageDir>/<sequence>/img1/ and the i-th image (1-based) is frame i.
func (v *Visualizer) RenderSequence(ctx context.Context, resultsPath string) error {
	sequence := SequenceName(resultsPath)
	records, err := motio.ReadResultsFile(resultsPath)
	if err != nil {
		return err
	}
	frames := motio.GroupByFrame(records)

	imgDir := filepath.Join(v.cfg.RawImageDir, sequence, "img1")
	images, err := ListFrames(imgDir)
	if err != nil {
		return err
	}

	sink, err := v.openSinks(sequence)
	if err != nil {
		return err
	}
	if sink == nil {
		v.logger.Warn("video and frames output are both disabled, nothing to render", zap.String("sequence", sequence))
		return nil
	}
	defer sink.Close()

	for i, imgPath := range images {
		if err := ctx.Err(); err != nil {
			return err
		}
		frameIdx := i + 1
		raw, err := imaging.Open(imgPath)
		if err != nil {
			return errors.Wrapf(err, "Can't open frame %s", imgPath)
		}
		annotated := v.drawer.Draw(raw, frames.Get(frameIdx))
		if err := sink.WriteFrame(annotated); err != nil {
			return errors.Wrapf(err, "Can't write frame %d of %s", frameIdx, sequence)
		}
		v.logger.Debug("frame written", zap.String("sequence", sequence), zap.Int("frame", frameIdx), zap.Int("tracks", len(frames.Get(frameIdx))))
	}
	if err := sink.Close(); err != nil {
		return errors.Wrapf(err, "Can't finish output of %s", sequence)
	}
	v.logger.Info("sequence rendered", zap.String("sequence", sequence), zap.Int("frames", len(images)))
	return nil
}

// openSinks returns nil sink when no output is enabled
func (v *Visualizer) openSinks(sequence string) (FrameSink, error) {
	sinks := multiSink{}
	if v.cfg.EnableVideo {
		videoPath := filepath.Join(v.cfg.VideoDir, sequence+".mp4")
		videoSink, err := v.newVideoSink(videoPath, v.cfg.Width, v.cfg.Height, v.cfg.FPS)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, videoSink)
	}
	if v.cfg.EnableFrames {
		dirSink, err := NewImageDirSink(filepath.Join(v.cfg.FramesDir, sequence))
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, dirSink)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return &onceSink{FrameSink: sinks}, nil
}

// onceSink makes Close safe to call twice (explicit close + deferred one)
type onceSink struct {
	FrameSink
	closed bool
}

func (sink *onceSink) Close() error {
	if sink.closed {
		return nil
	}
	sink.closed = true
	return sink.FrameSink.Close()
}

// SequenceName returns file name up to the first dot: "MOT16-02.txt" gives "MOT16-02"
func SequenceName(resultsPath string) string {
	name := filepath.Base(resultsPath)
	return strings.SplitN(name, ".", 2)[0]
}

// ListFrames returns image files of the directory sorted by name
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't list frames in %s", dir)
	}
	images := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := imaging.FormatFromFilename(entry.Name()); err != nil {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(images)
	return images, nil
}
