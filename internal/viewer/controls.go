package viewer

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/input"
	"github.com/Faultbox/objscene/internal/engine/rendercache"
	"github.com/Faultbox/objscene/internal/engine/renderer"
)

var keyModes = map[sdl.Keycode]renderer.DrawMode{
	sdl.K_w: renderer.Wireframe,
	sdl.K_s: renderer.Solid,
	sdl.K_t: renderer.Textured,
}

// handleEvent applies one input event and reports whether to keep running.
func (v *Viewer) handleEvent(e input.Event) bool {
	switch e.Type {
	case input.EventDrag:
		v.camera.HandleDrag(e.DX, e.DY)
	case input.EventWheel:
		v.camera.HandleZoom(e.DY)
	case input.EventKeyDown:
		return v.handleKey(e.Key)
	}
	return true
}

func (v *Viewer) handleKey(key sdl.Keycode) bool {
	if mode, ok := keyModes[key]; ok {
		v.scene.SetDrawMode(mode)
		v.recompile()
		v.log.Info("draw mode changed", zap.Stringer("mode", mode))
		v.updateTitle()
		return true
	}

	switch key {
	case sdl.K_ESCAPE:
		return false
	case sdl.K_c:
		v.scene.CreateCache(nil)
		v.log.Info("display lists enabled")
	case sdl.K_d:
		v.scene.DisableCache(nil)
		v.log.Info("display lists disabled")
	case sdl.K_r:
		if err := v.reloadAll(); err != nil {
			v.log.Warn("reload failed, keeping previous model", zap.Error(err))
		}
	}
	return true
}

// recompile schedules every compiled or pending mesh for compilation
// again, so lists recorded in the previous draw mode are not replayed.
func (v *Viewer) recompile() {
	for _, mesh := range v.scene.Meshes() {
		switch mesh.Cache.Kind() {
		case rendercache.Cached, rendercache.PendingCompile:
			v.scene.InvalidateCache(mesh)
			v.scene.CreateCache(mesh)
		}
	}
}

// reloadAll reloads every live mesh from disk.
func (v *Viewer) reloadAll() error {
	var errs error
	for _, mesh := range v.scene.Meshes() {
		if _, err := v.scene.Reload(mesh); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
