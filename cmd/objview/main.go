// objview displays OBJ models in an OpenGL window.
//
// Usage:
//
//	objview [flags] model.obj...
//
// Keys: w/s/t switch between wireframe, solid and textured drawing, c and d
// turn display lists on and off, r reloads the models, Esc quits.
// With -save-config the effective settings are written to the user config
// directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/viewer"
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
	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", filepath.Join(config.ConfigDir(), config.FileName))
		if len(cfg.Viewer.Models) == 0 {
			return
		}
	}
	if len(cfg.Viewer.Models) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: objview [flags] model.obj...")
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== objview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// run owns the viewer so it is closed before main can exit.
func run(cfg *config.Config) error {
	v, err := viewer.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}
	defer v.Close()

	return v.Run()
}
