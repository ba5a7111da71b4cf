// Package main is the entry point for the Surfview 3D image viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/surfview/internal/config"
	"github.com/Faultbox/surfview/internal/engine/surface"
	"github.com/Faultbox/surfview/internal/logger"
	"github.com/Faultbox/surfview/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Surfview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Create the viewer
	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	// Load the data pair and hand it to the loop
	height, amplitude, err := surface.LoadPair(cfg.Data.Surface, cfg.Data.Amplitude)
	if err != nil {
		logger.Error("failed to load surface data", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("surface data loaded",
		zap.String("surface", cfg.Data.Surface),
		zap.String("amplitude", cfg.Data.Amplitude),
		zap.Int("width", height.Width),
		zap.Int("height", height.Height),
	)
	v.Commands() <- viewer.SetSurface{Height: height, Amplitude: amplitude}

	// Run the viewer loop
	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
