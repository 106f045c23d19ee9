package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/LdDl/mot-eval/internal/logger"
	"github.com/LdDl/mot-eval/vis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	var configPath, name, resultsDir, videoDir, imagesDir, framesDir, mode string
	flag.StringVar(&configPath, "config", "", "Path to YAML config. Defaults are used when empty")
	flag.StringVar(&name, "name", "", "Name of the results set (sub-directory of results directory)")
	flag.StringVar(&resultsDir, "results", "", "Directory with results sets")
	flag.StringVar(&videoDir, "video", "", "Directory for rendered videos")
	flag.StringVar(&imagesDir, "images", "", "Directory with raw sequences: <images>/<sequence>/img1/")
	flag.StringVar(&framesDir, "frames", "", "Write annotated frames into this directory")
	flag.StringVar(&mode, "mode", "debug", "Logging mode: debug or release")
	flag.Parse()

	log, err := logger.New(mode)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	cfg, err := vis.LoadConfig(configPath)
	if err != nil {
		log.Fatal("can't load config", zap.Error(err))
	}
	overrideString(&cfg.ResultsName, name)
	overrideString(&cfg.ResultsDir, resultsDir)
	overrideString(&cfg.VideoDir, videoDir)
	overrideString(&cfg.RawImageDir, imagesDir)
	if framesDir != "" {
		cfg.FramesDir = framesDir
		cfg.EnableFrames = true
	}

	log = log.With(zap.String("run_id", uuid.NewString()))
	log.Info("starting visualizer",
		zap.String("results_name", cfg.ResultsName),
		zap.Bool("video", cfg.EnableVideo),
		zap.Bool("frames", cfg.EnableFrames),
		zap.Float64("fps", cfg.FPS),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height))

	visualizer, err := vis.New(cfg, log)
	if err != nil {
		log.Fatal("can't create visualizer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := visualizer.Run(ctx); err != nil {
		log.Error("rendering failed", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
	log.Info("done")
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
