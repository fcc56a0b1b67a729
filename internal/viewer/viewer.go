// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/engine/camera"
	"github.com/Faultbox/objscene/internal/engine/input"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/scene"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/engine/window"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/internal/watch"
)

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	running bool
	window  *window.Window
	backend *renderer.GLBackend
	scene   *scene.Scene
	input   *input.Input
	camera  *camera.OrbitCamera

	watcher *watch.Watcher
	changes <-chan string
	cancel  context.CancelFunc

	log *zap.Logger
}

// New opens the window and loads every model named in cfg.
func New(cfg *config.Config) (*Viewer, error) {
	if len(cfg.Viewer.Models) == 0 {
		return nil, fmt.Errorf("no models to view")
	}

	v := &Viewer{
		cfg:    cfg,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		log:    logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.Strings("models", cfg.Viewer.Models),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      "objview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create backend (AFTER window, since OpenGL context must exist)
	v.backend, err = renderer.NewGLBackend(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
		FOV:    cfg.Graphics.FOV,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.scene = scene.New(v.backend, texture.FileDecoder{})
	bounds, err := populate(v.scene, &cfg.Viewer)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.camera.FitToBounds(bounds.Min, bounds.Max, cfg.Graphics.FOV)

	if cfg.Viewer.Watch {
		if err := v.startWatching(); err != nil {
			v.log.Warn("file watching disabled", zap.Error(err))
		}
	}

	v.updateTitle()
	v.log.Info("viewer initialized successfully")
	return v, nil
}

func (v *Viewer) startWatching() error {
	w, err := watch.New(v.cfg.Viewer.Models, watch.DefaultDelay)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	v.watcher = w
	v.changes = w.Changes()
	v.cancel = cancel
	return nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting main loop")

	for v.running {
		// Calculate delta time
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			// Quit event received
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			if event.Type == input.EventWindowResize {
				v.backend.Resize(event.Width, event.Height)
				continue
			}
			if !v.handleEvent(event) {
				v.running = false
			}
		}

		// 2. Pick up files changed on disk
		v.reloadChanged()
		if v.cfg.Viewer.RotateSpeed != 0 {
			v.camera.Spin(v.cfg.Viewer.RotateSpeed * dt)
		}

		// 3. Render
		v.backend.BeginFrame(v.camera.ViewMatrix())
		v.scene.DrawAll()
		v.backend.EndFrame()

		// 4. Present (swap buffers)
		v.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// reloadChanged reloads the models the watcher reported since the last frame.
func (v *Viewer) reloadChanged() {
	for {
		select {
		case path := <-v.changes:
			n, err := v.scene.ReloadPath(path)
			if err != nil {
				v.log.Warn("reload failed, keeping previous model", zap.String("path", path), zap.Error(err))
				continue
			}
			v.log.Info("model reloaded", zap.String("path", path), zap.Int("meshes", n))
		default:
			return
		}
	}
}

func (v *Viewer) updateTitle() {
	if v.window == nil {
		return
	}
	name := filepath.Base(v.cfg.Viewer.Models[0])
	if n := len(v.cfg.Viewer.Models); n > 1 {
		name = fmt.Sprintf("%s (+%d)", name, n-1)
	}
	v.window.SetTitle(fmt.Sprintf("objview - %s [%s]", name, v.scene.DrawMode()))
}

// Close releases the scene and closes the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.cancel != nil {
		v.cancel()
	}
	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.scene != nil {
		v.scene.ReleaseAll()
		v.scene.ReleaseMaterials()
	}
	if v.window != nil {
		v.window.Close()
	}
}
