// Package generator implements the orchestrator (C10): it sequences the
// seven pipeline stages, wires the shared seed buffer and progress tracker
// through each one, and reports final statistics. Modeled on the tile
// generator's Generator.Generate: one big method that sequences stages,
// wraps every failure with fmt.Errorf("...: %w", err), and falls back to
// slog.Default() when no logger is supplied.
package generator

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"

	"biomegen/internal/biome"
	"biomegen/internal/progress"
	"biomegen/internal/raster"
	"biomegen/internal/seed"
	"biomegen/internal/stage1"
	"biomegen/internal/stage2"
	"biomegen/internal/stage3"
	"biomegen/internal/stats"
)

// Parameter bounds from the external interface contract.
const (
	MinDimension = 500
	MaxDimension = 10000

	MinMapResolution = 50
	MaxMapResolution = 500

	MinIslandAbundance = 10
	MaxIslandAbundance = 1000

	MinIslandSizeTimes10 = 10
	MaxIslandSizeTimes10 = 100

	MinCoastlineSmoothing = 0
	MaxCoastlineSmoothing = 100

	MinWorkers = 1
	MaxWorkers = 64

	DefaultMapResolution      = 100
	DefaultIslandAbundance    = 120
	DefaultIslandSizeTimes10  = 50
	DefaultCoastlineSmoothing = 5
)

// Params holds every tunable the pipeline needs for one run.
type Params struct {
	Width, Height       int
	MapResolution       int
	IslandAbundance     int
	IslandSizeTimes10   int
	CoastlineSmoothing  int
	Workers             int
	OutputPath          string
	OrganicEdges        bool
	Preview             bool
	PreviewMaxDimension int

	// DeterministicSeed, when non-nil, is expanded into one RNG per
	// worker so runs are reproducible; nil selects OS entropy per worker.
	DeterministicSeed *int64
}

// Validate rejects any parameter outside the documented range.
func (p Params) Validate() error {
	switch {
	case p.Width < MinDimension || p.Width > MaxDimension:
		return fmt.Errorf("generator: width %d out of range [%d,%d]", p.Width, MinDimension, MaxDimension)
	case p.Height < MinDimension || p.Height > MaxDimension:
		return fmt.Errorf("generator: height %d out of range [%d,%d]", p.Height, MinDimension, MaxDimension)
	case p.MapResolution < MinMapResolution || p.MapResolution > MaxMapResolution:
		return fmt.Errorf("generator: map_resolution %d out of range [%d,%d]", p.MapResolution, MinMapResolution, MaxMapResolution)
	case p.IslandAbundance < MinIslandAbundance || p.IslandAbundance > MaxIslandAbundance:
		return fmt.Errorf("generator: island_abundance %d out of range [%d,%d]", p.IslandAbundance, MinIslandAbundance, MaxIslandAbundance)
	case p.IslandSizeTimes10 < MinIslandSizeTimes10 || p.IslandSizeTimes10 > MaxIslandSizeTimes10:
		return fmt.Errorf("generator: island_size %d out of range [%d,%d]", p.IslandSizeTimes10, MinIslandSizeTimes10, MaxIslandSizeTimes10)
	case p.CoastlineSmoothing < MinCoastlineSmoothing || p.CoastlineSmoothing > MaxCoastlineSmoothing:
		return fmt.Errorf("generator: coastline_smoothing %d out of range [%d,%d]", p.CoastlineSmoothing, MinCoastlineSmoothing, MaxCoastlineSmoothing)
	case p.Workers < MinWorkers || p.Workers > MaxWorkers:
		return fmt.Errorf("generator: processes %d out of range [%d,%d]", p.Workers, MinWorkers, MaxWorkers)
	case p.OutputPath == "":
		return fmt.Errorf("generator: output path must not be empty")
	}
	return nil
}

// StageTiming is one stage's elapsed wall-clock time.
type StageTiming struct {
	Name    string
	Elapsed time.Duration
}

// Stats is the orchestrator's result: enough for an external harness to
// compute mean/stddev/percentiles across repeated runs and append a CSV
// row, without this package shipping that harness itself.
type Stats struct {
	Elapsed time.Duration
	Stages  []StageTiming
	Counts  stats.TypeCounts
	Pixels  int64
}

// Run sequences all seven stages against a freshly allocated seed buffer
// and writes the resulting PNG to p.OutputPath. tracker may be nil (auto
// mode skips the terminal UI per the external interface contract); when
// non-nil the caller is responsible for driving tracker.Run on a separate
// goroutine and joining it after Run returns.
func Run(logger *slog.Logger, p Params, tracker *progress.Tracker) (*Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	runStart := time.Now()
	rngFor := rngFactory(p.DeterministicSeed, p.Workers)

	buf, err := seed.NewBuffer(p.Width, p.Height, p.MapResolution, p.IslandAbundance)
	if err != nil {
		return nil, fmt.Errorf("generator: failed to allocate seed buffer: %w", err)
	}
	logger.Info("seed buffer allocated", "n", buf.N, "s", buf.S)

	var timings []StageTiming

	runStage := func(name string, fn func() error) error {
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("generator: stage %s failed: %w", name, err)
		}
		elapsed := time.Since(start)
		timings = append(timings, StageTiming{Name: name, Elapsed: elapsed})
		logger.Info("stage complete", "stage", name, "elapsed", elapsed)
		return nil
	}

	if err := runStage("placement", func() error {
		return stage1.Place(buf, p.Width, p.Height, p.Workers, rngFor, tracker)
	}); err != nil {
		return nil, err
	}

	if err := runStage("assignment", func() error {
		return stage2.Assign(buf, p.MapResolution, p.IslandSizeTimes10, p.Workers, rngFor, tracker)
	}); err != nil {
		return nil, err
	}

	if err := runStage("smoothing", func() error {
		return stage3.Smooth(buf, p.CoastlineSmoothing, p.Workers, tracker)
	}); err != nil {
		return nil, err
	}

	if err := runStage("biome-water", func() error {
		return biome.GenerateWater(buf, p.Height, p.Workers, tracker)
	}); err != nil {
		return nil, err
	}

	landRNG := rngFor(0)
	if err := runStage("biome-land", func() error {
		return biome.GenerateLand(buf, p.Height, p.Workers, landRNG, tracker)
	}); err != nil {
		return nil, err
	}

	var rasterResult *raster.Result
	if err := runStage("rasterize", func() error {
		var rErr error
		rasterResult, rErr = raster.Rasterize(buf, p.Width, p.Height, p.Workers, tracker)
		return rErr
	}); err != nil {
		return nil, err
	}

	var noise *perlin.Perlin
	if p.OrganicEdges {
		seedVal := int64(1337)
		if p.DeterministicSeed != nil {
			seedVal = *p.DeterministicSeed
		}
		noise = raster.NewOrganicEdgeNoise(seedVal)
	}

	if err := runStage("sink", func() error {
		img := raster.BuildImage(buf, rasterResult, noise)
		if err := raster.WritePNG(p.OutputPath, img); err != nil {
			return err
		}
		if p.Preview {
			maxDim := p.PreviewMaxDimension
			if maxDim <= 0 {
				maxDim = 256
			}
			previewPath := p.OutputPath + ".preview.png"
			if err := stats.WritePreview(previewPath, img, maxDim); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	counts := stats.FromMap(rasterResult.Counts)
	result := &Stats{
		Elapsed: time.Since(runStart),
		Stages:  timings,
		Counts:  counts,
		Pixels:  int64(p.Width) * int64(p.Height),
	}
	logger.Info("generation complete", "elapsed", result.Elapsed, "pixels", result.Pixels)
	return result, nil
}

// rngFactory builds the per-worker RNG source. A deterministic seed
// expands into one distinct source per worker (seed+workerIndex*7919) so tests
// get reproducible output without every worker sharing a generator;
// nil selects a fresh OS-entropy source per worker.
func rngFactory(deterministicSeed *int64, workers int) seed.RNGFactory {
	if deterministicSeed == nil {
		return func(workerIndex int) *rand.Rand {
			return rand.New(rand.NewSource(rand.Int63()))
		}
	}
	base := *deterministicSeed
	return func(workerIndex int) *rand.Rand {
		return rand.New(rand.NewSource(base + int64(workerIndex)*7919))
	}
}
