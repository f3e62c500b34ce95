package stage1

import (
	"math/rand"
	"testing"

	"biomegen/internal/seed"
)

func deterministicRNGFactory(base int64) seed.RNGFactory {
	return func(workerIndex int) *rand.Rand {
		return rand.New(rand.NewSource(base + int64(workerIndex)))
	}
}

func TestPlaceProducesUniqueCoordinatesAndCorrectTagCounts(t *testing.T) {
	buf, err := seed.NewBuffer(200, 200, 50, 10)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	if err := Place(buf, 200, 200, 4, deterministicRNGFactory(1), nil); err != nil {
		t.Fatalf("Place: %v", err)
	}

	seen := make(map[[2]int32]bool, buf.N)
	var landOrigin, waterForced, water int
	for _, s := range buf.Seeds {
		if s.X < 0 || s.X >= 200 || s.Y < 0 || s.Y >= 200 {
			t.Fatalf("seed coordinate (%d,%d) out of bounds", s.X, s.Y)
		}
		key := [2]int32{s.X, s.Y}
		if seen[key] {
			t.Fatalf("duplicate coordinate (%d,%d)", s.X, s.Y)
		}
		seen[key] = true

		switch s.Tag {
		case seed.TagLandOrigin:
			landOrigin++
		case seed.TagWaterForced:
			waterForced++
		case seed.TagWater:
			water++
		default:
			t.Fatalf("unexpected tag %q after placement", s.Tag)
		}
	}

	if landOrigin != buf.S {
		t.Errorf("land-origin count = %d, want %d", landOrigin, buf.S)
	}
	if waterForced != buf.S {
		t.Errorf("water-forced count = %d, want %d", waterForced, buf.S)
	}
	if water != buf.N-2*buf.S {
		t.Errorf("water count = %d, want %d", water, buf.N-2*buf.S)
	}
}

func TestPlaceIsDeterministicForFixedSeeds(t *testing.T) {
	buf1, _ := seed.NewBuffer(150, 150, 50, 10)
	buf2, _ := seed.NewBuffer(150, 150, 50, 10)

	if err := Place(buf1, 150, 150, 3, deterministicRNGFactory(42), nil); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if err := Place(buf2, 150, 150, 3, deterministicRNGFactory(42), nil); err != nil {
		t.Fatalf("Place: %v", err)
	}

	for i := range buf1.Seeds {
		if buf1.Seeds[i] != buf2.Seeds[i] {
			t.Fatalf("seed %d differs between identically-seeded runs: %v vs %v", i, buf1.Seeds[i], buf2.Seeds[i])
		}
	}
}
