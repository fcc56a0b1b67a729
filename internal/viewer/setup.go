package viewer

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/config"
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/scene"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
)

// populate loads the configured models into s and applies the viewer
// settings to them. It returns the bounds of everything loaded. Models that
// fail to load are logged and skipped; it fails only if none load.
func populate(s *scene.Scene, vc *config.ViewerConfig) (model.Bounds, error) {
	log := logger.Named("viewer")

	mode, err := renderer.ParseDrawMode(vc.DrawMode)
	if err != nil {
		return model.Bounds{}, err
	}
	s.SetDrawMode(mode)

	var (
		bounds model.Bounds
		loaded int
		errs   error
	)
	for _, path := range vc.Models {
		mesh, stats, err := s.LoadObjectStats(path, vc.Mipmap)
		if err != nil {
			log.Warn("model not loaded", zap.String("path", path), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		if loaded == 0 {
			bounds = stats.Bounds
		} else {
			bounds = bounds.Union(stats.Bounds)
		}
		loaded++
		log.Info("model loaded",
			zap.String("path", path),
			zap.Int("vertices", mesh.NumVertices()),
			zap.Int("faces", mesh.NumFaces()),
			zap.Int("warnings", stats.Warnings),
			zap.Int("skipped_faces", stats.SkippedFaces),
		)
	}
	if loaded == 0 {
		return model.Bounds{}, fmt.Errorf("no model could be loaded: %w", errs)
	}

	for name, rgb := range vc.Emission {
		if len(rgb) != 3 {
			log.Warn("emission needs 3 components", zap.String("material", name))
			continue
		}
		if err := s.SetEmission(name, rgb[0], rgb[1], rgb[2]); err != nil {
			log.Warn("emission not applied", zap.String("material", name), zap.Error(err))
		}
	}

	if vc.MinFilter != "" || vc.MagFilter != "" {
		min, mag, err := filters(vc)
		if err != nil {
			return model.Bounds{}, err
		}
		if err := s.SetTextureFilter(texture.None, min, mag); err != nil {
			return model.Bounds{}, err
		}
	}

	if vc.DisplayLists {
		s.CreateCache(nil)
	}
	return bounds, nil
}

// filters resolves the configured filter names. An empty name keeps the
// default a texture gets at load time.
func filters(vc *config.ViewerConfig) (min, mag texture.Filter, err error) {
	min, mag = texture.FilterLinear, texture.FilterLinear
	if vc.Mipmap {
		min = texture.FilterLinearMipmapLinear
	}
	if vc.MinFilter != "" {
		if min, err = texture.ParseFilter(vc.MinFilter); err != nil {
			return 0, 0, err
		}
	}
	if vc.MagFilter != "" {
		if mag, err = texture.ParseFilter(vc.MagFilter); err != nil {
			return 0, 0, err
		}
	}
	return min, mag, nil
}
