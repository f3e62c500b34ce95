// Package stats collects the type-distribution statistics the orchestrator
// reports, and optionally writes a small preview thumbnail of the final
// raster for quick terminal/CI inspection.
package stats

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/gift"

	"biomegen/internal/seed"
)

// TypeCounts holds the 11 final-tag tallies produced by stage 5, in a
// fixed, human-readable order.
type TypeCounts struct {
	Ice, ShallowWater, Water, DeepWater, Rock, Desert, Jungle, Forest, Plains, Taiga, Snow int64
}

// FromMap converts the rasterizer's tag-keyed count map into TypeCounts.
func FromMap(counts map[seed.Tag]int64) TypeCounts {
	return TypeCounts{
		Ice:          counts[seed.TagIce],
		ShallowWater: counts[seed.TagShallowWater],
		Water:        counts[seed.TagWater],
		DeepWater:    counts[seed.TagDeepWater],
		Rock:         counts[seed.TagRock],
		Desert:       counts[seed.TagDesert],
		Jungle:       counts[seed.TagJungle],
		Forest:       counts[seed.TagForest],
		Plains:       counts[seed.TagPlains],
		Taiga:        counts[seed.TagTaiga],
		Snow:         counts[seed.TagSnow],
	}
}

// Total sums all 11 counts; it must equal width*height for a complete run.
func (c TypeCounts) Total() int64 {
	return c.Ice + c.ShallowWater + c.Water + c.DeepWater + c.Rock +
		c.Desert + c.Jungle + c.Forest + c.Plains + c.Taiga + c.Snow
}

// WritePreview downsizes img to at most maxDim on its longest side using
// gift.Resize and writes it as a PNG alongside the primary output. This is
// the --preview enrichment: off by default, and never touches the
// primary output path.
func WritePreview(path string, img image.Image, maxDim int) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(b))
	g.Draw(dst, img)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stats: failed to create preview file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("stats: failed to encode preview png: %w", err)
	}
	return nil
}
