package stage3

import (
	"math/rand"
	"testing"

	"biomegen/internal/seed"
	"biomegen/internal/stage1"
	"biomegen/internal/stage2"
)

func rngFactory(base int64) seed.RNGFactory {
	return func(workerIndex int) *rand.Rand {
		return rand.New(rand.NewSource(base + int64(workerIndex)))
	}
}

func buildAssignedBuffer(t *testing.T) *seed.Buffer {
	t.Helper()
	buf, err := seed.NewBuffer(300, 300, 50, 10)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := stage1.Place(buf, 300, 300, 4, rngFactory(1), nil); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if err := stage2.Assign(buf, 50, 50, 4, rngFactory(2), nil); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	return buf
}

func TestSmoothWithZeroKIsNoop(t *testing.T) {
	buf := buildAssignedBuffer(t)
	before := make([]seed.Seed, len(buf.Seeds))
	copy(before, buf.Seeds)

	if err := Smooth(buf, 0, 4, nil); err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	for i := range buf.Seeds {
		if buf.Seeds[i] != before[i] {
			t.Fatalf("seed %d changed under k=0: %v -> %v", i, before[i], buf.Seeds[i])
		}
	}
}

func TestSmoothKeepsRegularSeedsLandOrWater(t *testing.T) {
	buf := buildAssignedBuffer(t)

	if err := Smooth(buf, 3, 4, nil); err != nil {
		t.Fatalf("Smooth: %v", err)
	}

	start, end := buf.RegularRange()
	for i := start; i < end; i++ {
		tag := buf.Seeds[i].Tag
		if tag != seed.TagLand && tag != seed.TagWater {
			t.Errorf("regular seed %d has tag %q after smoothing, want land or water", i, tag)
		}
	}
}

func TestSmoothToleratesNoWaterSeeds(t *testing.T) {
	buf, err := seed.NewBuffer(200, 200, 50, 10)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if err := stage1.Place(buf, 200, 200, 2, rngFactory(5), nil); err != nil {
		t.Fatalf("Place: %v", err)
	}
	// Force every seed, water-forced ones included, to land so the water
	// tree is empty.
	for i := range buf.Seeds {
		buf.Seeds[i].Tag = seed.TagLand
	}

	if err := Smooth(buf, 2, 2, nil); err != nil {
		t.Fatalf("Smooth with an empty water side: %v", err)
	}
}
