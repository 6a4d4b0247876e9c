package trailbg

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/trailbg/internal/texture"
)

// LoadMaterial decodes the normal and albedo maps in the background and hands
// them to the renderer; they take effect at the start of a later Tick. An
// empty path leaves that map unchanged.
//
// A map that fails to load is logged at Warn and the current map (initially a
// flat placeholder) stays in use. The returned channel receives the joined
// load errors, or nil, and is then closed.
func (r *Renderer) LoadMaterial(ctx context.Context, normalPath, albedoPath string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)

		var m material
		var errs []error
		load := func(kind, path string) *texture.Texture {
			if path == "" {
				return nil
			}
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				return nil
			}
			tex, err := texture.Load(path)
			if err != nil {
				Logger().Warn("trailbg: material map unavailable, keeping placeholder",
					"map", kind, "path", path, "err", err)
				errs = append(errs, fmt.Errorf("%s map: %w", kind, err))
				return nil
			}
			Logger().Info("trailbg: material map loaded",
				"map", kind, "width", tex.Width(), "height", tex.Height())
			return tex
		}
		m.normal = load("normal", normalPath)
		m.albedo = load("albedo", albedoPath)

		if (m.normal != nil || m.albedo != nil) && !r.closed.Load() {
			r.setMaterial(m)
		}
		done <- errors.Join(errs...)
	}()
	return done
}

// SetNormalMap queues a tangent-space normal map for the next frame. Its
// aspect ratio reshapes the plane. An unusable image is logged at Warn and
// the current map stays in use.
func (r *Renderer) SetNormalMap(img image.Image) error {
	tex, err := mapFromImage("normal", img)
	if err != nil {
		return err
	}
	r.setMaterial(material{normal: tex})
	return nil
}

// SetAlbedoMap queues a base-color map for the next frame. An unusable image
// is logged at Warn and the current map stays in use.
func (r *Renderer) SetAlbedoMap(img image.Image) error {
	tex, err := mapFromImage("albedo", img)
	if err != nil {
		return err
	}
	r.setMaterial(material{albedo: tex})
	return nil
}

func mapFromImage(kind string, img image.Image) (*texture.Texture, error) {
	tex, err := texture.FromImage(img)
	if err != nil {
		Logger().Warn("trailbg: material map unusable, keeping current map", "map", kind, "err", err)
		return nil, fmt.Errorf("%s map: %w", kind, err)
	}
	return tex, nil
}
