package vis

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/unixpickle/ffmpego"
)

// FrameSink consumes annotated frames in order
type FrameSink interface {
	WriteFrame(frame image.Image) error
	Close() error
}

// VideoSink encodes frames into video file. Encoding itself is done by ffmpeg executable.
// Frames of other size are resized to the video size.
type VideoSink struct {
	// *ffmpego.VideoWriter
	writer FrameSink
	width  int
	height int
}

// NewVideoSink starts video encoding into path
func NewVideoSink(path string, width, height int, fps float64) (FrameSink, error) {
	writer, err := ffmpego.NewVideoWriter(path, width, height, fps)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't create video writer for %s", path)
	}
	return &VideoSink{
		writer: writer,
		width:  width,
		height: height,
	}, nil
}

// WriteFrame appends frame to the video
func (sink *VideoSink) WriteFrame(frame image.Image) error {
	return sink.writer.WriteFrame(fitFrame(frame, sink.width, sink.height))
}

// Close finishes video file
func (sink *VideoSink) Close() error {
	return sink.writer.Close()
}

// ImageDirSink writes every frame as a numbered PNG file
type ImageDirSink struct {
	dir  string
	next int
}

// NewImageDirSink creates directory if needed. Numbering starts from 1.
func NewImageDirSink(dir string) (*ImageDirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "Can't create frames directory %s", dir)
	}
	return &ImageDirSink{
		dir:  dir,
		next: 1,
	}, nil
}

// WriteFrame saves frame as <dir>/<number>.png
func (sink *ImageDirSink) WriteFrame(frame image.Image) error {
	path := filepath.Join(sink.dir, fmt.Sprintf("%06d.png", sink.next))
	if err := imaging.Save(frame, path); err != nil {
		return errors.Wrapf(err, "Can't save frame %s", path)
	}
	sink.next++
	return nil
}

// Close does nothing: every frame is a complete file already
func (sink *ImageDirSink) Close() error {
	return nil
}

// multiSink fans frames out to several sinks
type multiSink []FrameSink

func (sinks multiSink) WriteFrame(frame image.Image) error {
	for _, sink := range sinks {
		if err := sink.WriteFrame(frame); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error
func (sinks multiSink) Close() error {
	var first error
	for _, sink := range sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// fitFrame resizes frame to the given size when it differs
func fitFrame(frame image.Image, width, height int) image.Image {
	bounds := frame.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return frame
	}
	return imaging.Resize(frame, width, height, imaging.Linear)
}
