package biome

import (
	"math/rand"
	"testing"

	"biomegen/internal/seed"
)

func TestEquatorBandRange(t *testing.T) {
	const height = 1000
	cases := []struct {
		y    int32
		want int
	}{
		{500, 0},    // exactly on the equator
		{0, 9},      // pole
		{1000, 9},   // opposite pole
		{550, 1},    // 50/1000*20 = 1.0
	}
	for _, c := range cases {
		if got := equatorBand(c.y, height); got != c.want {
			t.Errorf("equatorBand(%d, %d) = %d, want %d", c.y, height, got, c.want)
		}
	}
}

func TestGenerateWaterAssignsOnlyValidFinalTags(t *testing.T) {
	buf := &seed.Buffer{N: 10, Seeds: []seed.Seed{
		{X: 0, Y: 0, Tag: seed.TagLand},
		{X: 100, Y: 100, Tag: seed.TagWater},
		{X: 200, Y: 200, Tag: seed.TagWater},
		{X: 300, Y: 300, Tag: seed.TagWaterForced},
	}}

	if err := GenerateWater(buf, 1000, 2, nil); err != nil {
		t.Fatalf("GenerateWater: %v", err)
	}

	valid := map[seed.Tag]bool{
		seed.TagIce: true, seed.TagShallowWater: true,
		seed.TagWater: true, seed.TagDeepWater: true,
		seed.TagLand: true, // the land seed itself is untouched
	}
	for i, s := range buf.Seeds {
		if !valid[s.Tag] {
			t.Errorf("seed %d has unexpected tag %q after GenerateWater", i, s.Tag)
		}
	}
}

func TestGenerateWaterTreatsNoLandAsInfiniteDistance(t *testing.T) {
	buf := &seed.Buffer{N: 2, Seeds: []seed.Seed{
		{X: 0, Y: 0, Tag: seed.TagWater},
		{X: 10, Y: 10, Tag: seed.TagWater},
	}}
	if err := GenerateWater(buf, 1000, 1, nil); err != nil {
		t.Fatalf("GenerateWater with no land: %v", err)
	}
	for i, s := range buf.Seeds {
		if s.Tag != seed.TagDeepWater {
			t.Errorf("seed %d = %q, want deep water (infinite distance to nonexistent land)", i, s.Tag)
		}
	}
}

func TestGenerateLandAssignsOnlyTableTags(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 200
	seeds := make([]seed.Seed, n)
	for i := range seeds {
		seeds[i] = seed.Seed{X: int32(i), Y: int32(i % 1000), Tag: seed.TagLand}
	}
	buf := &seed.Buffer{N: n * 10, Seeds: seeds}

	if err := GenerateLand(buf, 1000, 4, rng, nil); err != nil {
		t.Fatalf("GenerateLand: %v", err)
	}

	valid := make(map[seed.Tag]bool, len(seed.FinalTags))
	for _, tag := range seed.FinalTags {
		valid[tag] = true
	}
	for i, s := range buf.Seeds {
		if !valid[s.Tag] {
			t.Errorf("land seed %d ended with non-final tag %q", i, s.Tag)
		}
	}
}

func TestGenerateLandToleratesFewerSeedsThanNOverTen(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	// N/10 would exceed the number of actual land seeds; GenerateLand must
	// clamp rather than slice out of range.
	buf := &seed.Buffer{N: 10000, Seeds: []seed.Seed{
		{X: 0, Y: 0, Tag: seed.TagLand},
		{X: 1, Y: 1, Tag: seed.TagLand},
	}}
	if err := GenerateLand(buf, 1000, 1, rng, nil); err != nil {
		t.Fatalf("GenerateLand: %v", err)
	}
}
