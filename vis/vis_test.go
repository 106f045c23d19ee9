package vis

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/mot-eval/mot"
	"github.com/LdDl/mot-eval/motio"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.FPS)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1080, cfg.Height)
	assert.True(t, cfg.EnableVideo)
	assert.False(t, cfg.EnableFrames)
	assert.Equal(t, 3.0, cfg.Style.LineWidth)
	// results_name has no sensible default
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vis.yaml")
	content := `
results_name: CenterNet_ECO
results_dir: ./results
enable_video: false
enable_frames: true
fps: 25
width: 640
height: 480
style:
  line_width: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("MOTVIS_VIDEO_DIR", "/tmp/videos")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "CenterNet_ECO", cfg.ResultsName)
	assert.Equal(t, "./results", cfg.ResultsDir)
	assert.Equal(t, "/tmp/videos", cfg.VideoDir)
	assert.False(t, cfg.EnableVideo)
	assert.True(t, cfg.EnableFrames)
	assert.Equal(t, 25.0, cfg.FPS)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 2.0, cfg.Style.LineWidth)
	assert.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTrackColor(t *testing.T) {
	assert.Len(t, Palette, 75)
	// First palette entry is (144, 238, 144) in BGR order
	assert.Equal(t, color.RGBA{R: 144, G: 238, B: 144, A: 255}, TrackColor(0))
	// (178, 34, 34) in BGR is blue-ish
	assert.Equal(t, color.RGBA{R: 34, G: 34, B: 178, A: 255}, TrackColor(1))
	assert.Equal(t, TrackColor(1), TrackColor(76))
	assert.Equal(t, TrackColor(74), TrackColor(-1))
	assert.Equal(t, "42", TrackLabel(42))
}

func blankFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestDrawerDraw(t *testing.T) {
	drawer, err := NewDrawer(StyleConfig{LineWidth: 3})
	require.NoError(t, err)

	frame := blankFrame(200, 200)
	records := []motio.Record{
		{Frame: 1, ID: 5, Box: mot.NewRect(50.7, 60.2, 101, 81)},
	}
	out := drawer.Draw(frame, records)
	require.Equal(t, frame.Bounds(), out.Bounds())

	trackColor := TrackColor(5)
	black := color.RGBA{A: 255}
	// Box spans pixels 50..150 and 60..140, outline lies on these lines
	assertColorNear(t, trackColor, out.At(150, 100))
	assertColorNear(t, trackColor, out.At(100, 140))
	// Inside and outside of the box stay untouched
	assert.Equal(t, black, color.RGBAModel.Convert(out.At(100, 100)))
	assert.Equal(t, black, color.RGBAModel.Convert(out.At(10, 10)))
	assert.Equal(t, black, color.RGBAModel.Convert(out.At(190, 190)))
	// Source frame is not modified
	assert.Equal(t, black, color.RGBAModel.Convert(frame.At(150, 100)))
}

// assertColorNear allows small rounding differences of antialiased drawing
func assertColorNear(t *testing.T, expected color.RGBA, actual color.Color) {
	t.Helper()
	got := color.RGBAModel.Convert(actual).(color.RGBA)
	assert.InDelta(t, float64(expected.R), float64(got.R), 2, "red: expected %v, got %v", expected, got)
	assert.InDelta(t, float64(expected.G), float64(got.G), 2, "green: expected %v, got %v", expected, got)
	assert.InDelta(t, float64(expected.B), float64(got.B), 2, "blue: expected %v, got %v", expected, got)
}

type fakeSink struct {
	frames []image.Image
	closed int
	path   string
	width  int
	height int
	fps    float64
}

func (sink *fakeSink) WriteFrame(frame image.Image) error {
	sink.frames = append(sink.frames, frame)
	return nil
}

func (sink *fakeSink) Close() error {
	sink.closed++
	return nil
}

func TestVideoSinkResizes(t *testing.T) {
	encoder := &fakeSink{}
	sink := &VideoSink{writer: encoder, width: 32, height: 24}

	require.NoError(t, sink.WriteFrame(blankFrame(64, 48)))
	require.NoError(t, sink.WriteFrame(blankFrame(32, 24)))
	require.NoError(t, sink.Close())

	require.Len(t, encoder.frames, 2)
	for _, frame := range encoder.frames {
		assert.Equal(t, image.Rect(0, 0, 32, 24), frame.Bounds())
	}
	assert.Equal(t, 1, encoder.closed)
}

func TestFitFrame(t *testing.T) {
	same := blankFrame(32, 24)
	// Frame of the right size is passed as is
	assert.Same(t, same, fitFrame(same, 32, 24).(*image.RGBA))

	resized := fitFrame(blankFrame(64, 48), 32, 24)
	assert.Equal(t, image.Rect(0, 0, 32, 24), resized.Bounds())
	assert.Equal(t, color.RGBA{A: 255}, color.RGBAModel.Convert(resized.At(10, 10)))

	stretched := fitFrame(blankFrame(10, 10), 40, 20)
	assert.Equal(t, image.Rect(0, 0, 40, 20), stretched.Bounds())
}

func prepareDataset(t *testing.T, root string) {
	t.Helper()
	resultsDir := filepath.Join(root, "results", "tracker")
	require.NoError(t, os.MkdirAll(resultsDir, 0o755))
	results := "1,1,10,10,20,20,-1,-1,-1,-1\n2,1,12,12,20,20,-1,-1,-1,-1\n2,2,40,40,10,10,-1,-1,-1,-1\n"
	require.NoError(t, os.WriteFile(filepath.Join(resultsDir, "SEQ-01.txt"), []byte(results), 0o644))

	imgDir := filepath.Join(root, "data", "SEQ-01", "img1")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	for _, name := range []string{"000002.png", "000001.png", "000003.png"} {
		require.NoError(t, imaging.Save(blankFrame(64, 48), filepath.Join(imgDir, name)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "notes.txt"), []byte("not a frame"), 0o644))
}

func testConfig(root string) *Config {
	return &Config{
		ResultsName:  "tracker",
		ResultsDir:   filepath.Join(root, "results"),
		VideoDir:     filepath.Join(root, "video"),
		RawImageDir:  filepath.Join(root, "data"),
		FramesDir:    filepath.Join(root, "frames"),
		EnableVideo:  true,
		EnableFrames: true,
		FPS:          30,
		Width:        32,
		Height:       24,
		Style:        StyleConfig{LineWidth: 3},
	}
}

func TestVisualizerRun(t *testing.T) {
	root := t.TempDir()
	prepareDataset(t, root)
	cfg := testConfig(root)

	visualizer, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	sink := &fakeSink{}
	visualizer.newVideoSink = func(path string, width, height int, fps float64) (FrameSink, error) {
		sink.path, sink.width, sink.height, sink.fps = path, width, height, fps
		return sink, nil
	}

	require.NoError(t, visualizer.Run(context.Background()))

	assert.Equal(t, filepath.Join(root, "video", "SEQ-01.mp4"), sink.path)
	assert.Equal(t, 30.0, sink.fps)
	require.Len(t, sink.frames, 3)
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, 32, sink.width)
	assert.Equal(t, 24, sink.height)
	// Resizing to the video size is up to the video sink
	for _, frame := range sink.frames {
		assert.Equal(t, image.Rect(0, 0, 64, 48), frame.Bounds())
	}

	// Annotated frames keep their original size
	written, err := ListFrames(filepath.Join(root, "frames", "SEQ-01"))
	require.NoError(t, err)
	require.Len(t, written, 3)
	first, err := imaging.Open(written[0])
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), first.Bounds())
	// Track 1 on frame 1 has its right edge at x=29
	assertColorNear(t, TrackColor(1), first.At(29, 20))
	// Frame 3 has no records and stays blank
	third, err := imaging.Open(written[2])
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 255}, color.RGBAModel.Convert(third.At(29, 20)))
}

func TestVisualizerCanceled(t *testing.T) {
	root := t.TempDir()
	prepareDataset(t, root)
	cfg := testConfig(root)
	cfg.EnableFrames = false

	visualizer, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	sink := &fakeSink{width: 32, height: 24}
	visualizer.newVideoSink = func(string, int, int, float64) (FrameSink, error) {
		return sink, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = visualizer.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.frames)
	assert.Equal(t, 1, sink.closed)
}

func TestNewCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	_, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.DirExists(t, cfg.ResultsDir)
	assert.DirExists(t, cfg.VideoDir)

	cfg.FPS = 0
	_, err = New(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestSequenceName(t *testing.T) {
	assert.Equal(t, "MOT16-02", SequenceName("/results/CenterNet_ECO/MOT16-02.txt"))
	assert.Equal(t, "seq", SequenceName("seq.tar.gz"))
	assert.Equal(t, "seq", SequenceName("seq"))
}

func TestListFrames(t *testing.T) {
	root := t.TempDir()
	prepareDataset(t, root)
	frames, err := ListFrames(filepath.Join(root, "data", "SEQ-01", "img1"))
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, "000001.png", filepath.Base(frames[0]))
	assert.Equal(t, "000003.png", filepath.Base(frames[2]))

	_, err = ListFrames(filepath.Join(root, "missing"))
	assert.Error(t, err)
}
