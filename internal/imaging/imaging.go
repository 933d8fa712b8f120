// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates WebP renditions of uploaded media using
// libvips. Each upload gets a fixed set of downscaled copies sized for
// the admin library grid and for storefront product and component
// images. Renditions wider than the source are skipped rather than
// upscaled.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// WebPContentType is the MIME type of every generated rendition.
const WebPContentType = "image/webp"

// Size describes one rendition target.
type Size struct {
	Label    string // key suffix, e.g. "thumb"
	MaxWidth int
	Quality  int // WebP quality 1-100
}

// MediaSizes is the rendition set generated for every image upload:
// a grid thumbnail, a card-sized copy, and a detail-view copy.
var MediaSizes = []Size{
	{Label: "thumb", MaxWidth: 240, Quality: 70},
	{Label: "card", MaxWidth: 640, Quality: 78},
	{Label: "detail", MaxWidth: 1280, Quality: 82},
}

// Rendition is one generated copy ready for upload.
type Rendition struct {
	Label  string
	Width  int
	Height int
	WebP   []byte
}

// Startup initialises libvips. Call once before generating renditions.
// concurrency sets the libvips worker thread count (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     100,
		MaxCacheMem:      50 * 1024 * 1024,
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources.
func Shutdown() {
	vips.Shutdown()
}

// Renditions produces a WebP copy of src for each size. A nil sizes
// slice means MediaSizes. Sizes wider than the source are clamped to
// the source width, and generation stops after the first clamped size
// since anything larger would be a duplicate.
func Renditions(src []byte, sizes []Size) ([]Rendition, error) {
	if len(sizes) == 0 {
		sizes = MediaSizes
	}

	probe, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("imaging: probe: %w", err)
	}
	srcWidth := probe.Width()
	probe.Close()

	var out []Rendition
	for _, s := range sizes {
		width := s.MaxWidth
		if srcWidth <= width {
			width = srcWidth
		}

		img, err := vips.NewThumbnailFromBuffer(src, width, 0, vips.InterestingNone)
		if err != nil {
			return nil, fmt.Errorf("imaging: resize %s to %dpx: %w", s.Label, width, err)
		}

		// Bake in the EXIF orientation before metadata is stripped.
		if err := img.AutoRotate(); err != nil {
			img.Close()
			return nil, fmt.Errorf("imaging: autorotate %s: %w", s.Label, err)
		}

		params := vips.NewWebpExportParams()
		params.Quality = s.Quality
		params.Lossless = false
		params.StripMetadata = true

		buf, meta, err := img.ExportWebp(params)
		img.Close()
		if err != nil {
			return nil, fmt.Errorf("imaging: export %s: %w", s.Label, err)
		}

		out = append(out, Rendition{
			Label:  s.Label,
			Width:  meta.Width,
			Height: meta.Height,
			WebP:   buf,
		})

		if srcWidth <= s.MaxWidth {
			break
		}
	}

	return out, nil
}
