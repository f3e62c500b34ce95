package stats

import (
	"testing"

	"biomegen/internal/seed"
)

func TestFromMapAndTotal(t *testing.T) {
	counts := map[seed.Tag]int64{
		seed.TagIce:          1,
		seed.TagShallowWater: 2,
		seed.TagWater:        3,
		seed.TagDeepWater:    4,
		seed.TagRock:         5,
		seed.TagDesert:       6,
		seed.TagJungle:       7,
		seed.TagForest:       8,
		seed.TagPlains:       9,
		seed.TagTaiga:        10,
		seed.TagSnow:         11,
	}
	tc := FromMap(counts)
	if got, want := tc.Total(), int64(1+2+3+4+5+6+7+8+9+10+11); got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
	if tc.Ice != 1 || tc.Snow != 11 {
		t.Errorf("field mapping mismatch: %+v", tc)
	}
}

func TestFromMapZerosMissingTags(t *testing.T) {
	tc := FromMap(map[seed.Tag]int64{seed.TagWater: 42})
	if tc.Water != 42 {
		t.Errorf("Water = %d, want 42", tc.Water)
	}
	if tc.Ice != 0 || tc.Snow != 0 {
		t.Errorf("expected zero for unset tags, got %+v", tc)
	}
}
