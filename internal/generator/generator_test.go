package generator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"biomegen/internal/progress"
)

func TestRunEndToEndSmallMap(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "result.png")
	seedVal := int64(1234)

	// CoastlineSmoothing: 0 is the documented minimum (§6) and the exact
	// value used by §8 scenarios 1-2, so this run must exercise a non-nil
	// tracker the way prompt mode does: a skipped smoothing stage must not
	// block the tracker's Run loop from ever returning.
	tracker := progress.New()
	join := make(chan struct{})
	go func() {
		tracker.Run(&discardWriter{})
		close(join)
	}()

	stats, err := Run(nil, Params{
		Width:              500,
		Height:             500,
		MapResolution:      500,
		IslandAbundance:    1000,
		IslandSizeTimes10:  50,
		CoastlineSmoothing: 0,
		Workers:            2,
		OutputPath:         out,
		DeterministicSeed:  &seedVal,
	}, tracker)
	require.NoError(t, err)
	require.NotNil(t, stats)

	select {
	case <-join:
	case <-time.After(2 * time.Second):
		t.Fatal("tracker.Run never returned after generation finished with coastline_smoothing=0")
	}

	// Scenario 1 (§8): N=500, S=0 (no land-origin seeds at all), so every
	// seed stays water through every stage and the rasterized image is
	// entirely water (with no land anywhere, GenerateWater's infinite
	// land-distance falls into the deep-water bucket).
	waterTotal := stats.Counts.Ice + stats.Counts.ShallowWater + stats.Counts.Water + stats.Counts.DeepWater
	landTotal := stats.Counts.Rock + stats.Counts.Desert + stats.Counts.Jungle +
		stats.Counts.Forest + stats.Counts.Plains + stats.Counts.Taiga + stats.Counts.Snow
	require.Equal(t, int64(500*500), waterTotal)
	require.Equal(t, int64(0), landTotal)
	require.Equal(t, int64(500*500), stats.Counts.Total())
	require.Equal(t, int64(500*500), stats.Pixels)

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	require.Len(t, stats.Stages, 7)
}

func TestRunRejectsOutOfRangeParams(t *testing.T) {
	_, err := Run(nil, Params{
		Width:              100, // below MinDimension
		Height:             500,
		MapResolution:      100,
		IslandAbundance:    120,
		IslandSizeTimes10:  50,
		CoastlineSmoothing: 5,
		Workers:            1,
		OutputPath:         "out.png",
	}, nil)
	require.Error(t, err)
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	dir := t.TempDir()
	seedVal := int64(777)

	run := func(name string) string {
		out := filepath.Join(dir, name)
		_, err := Run(nil, Params{
			Width:              500,
			Height:             500,
			MapResolution:      200,
			IslandAbundance:    50,
			IslandSizeTimes10:  50,
			CoastlineSmoothing: 2,
			Workers:            3,
			OutputPath:         out,
			DeterministicSeed:  &seedVal,
		}, nil)
		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return string(data)
	}

	a := run("a.png")
	b := run("b.png")
	require.Equal(t, a, b, "identical params and a fixed seed must produce byte-identical PNGs")
}

// discardWriter swallows the progress tracker's terminal redraws so tests
// exercising Run's 100ms ticker loop don't spam test output.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
