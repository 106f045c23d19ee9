package vis

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is visualizer configuration
type Config struct {
	// Name of the results set: results are read from <ResultsDir>/<ResultsName>/
	ResultsName string `mapstructure:"results_name"`
	ResultsDir  string `mapstructure:"results_dir"`
	// Videos are written as <VideoDir>/<sequence>.mp4
	VideoDir string `mapstructure:"video_dir"`
	// Raw frames are read from <RawImageDir>/<sequence>/img1/
	RawImageDir string `mapstructure:"raw_image_dir"`
	// Annotated frames are written to <FramesDir>/<sequence>/
	FramesDir string `mapstructure:"frames_dir"`

	EnableVideo  bool `mapstructure:"enable_video"`
	EnableFrames bool `mapstructure:"enable_frames"`

	FPS    float64 `mapstructure:"fps"`
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`

	Style StyleConfig `mapstructure:"style"`
}

// StyleConfig is drawing options
type StyleConfig struct {
	LineWidth float64 `mapstructure:"line_width"`
	// TrueType font for labels. Empty means built-in bitmap font
	FontPath string  `mapstructure:"font_path"`
	FontSize float64 `mapstructure:"font_size"`
}

// LoadConfig reads YAML configuration. Empty path gives defaults.
// Every key can be overridden by environment variable, e.g. MOTVIS_VIDEO_DIR or MOTVIS_STYLE_LINE_WIDTH.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MOTVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "Can't read config file %s", configPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("results_name", "")
	v.SetDefault("results_dir", "results")
	v.SetDefault("video_dir", "video")
	v.SetDefault("raw_image_dir", "data")
	v.SetDefault("frames_dir", "frames")
	v.SetDefault("enable_video", true)
	v.SetDefault("enable_frames", false)
	v.SetDefault("fps", 30.0)
	v.SetDefault("width", 1920)
	v.SetDefault("height", 1080)
	v.SetDefault("style.line_width", 3.0)
	v.SetDefault("style.font_path", "")
	v.SetDefault("style.font_size", 24.0)
}

// Validate checks configuration consistency
func (cfg *Config) Validate() error {
	if cfg.ResultsName == "" {
		return errors.New("results_name is required")
	}
	if cfg.FPS <= 0 {
		return errors.Errorf("fps must be positive, got %v", cfg.FPS)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.Errorf("frame size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Style.LineWidth <= 0 {
		return errors.Errorf("line_width must be positive, got %v", cfg.Style.LineWidth)
	}
	return nil
}
