// Package biome implements stage 4: normalizing every seed from its
// provisional land/water tag into one of the 11 final biome tags, in two
// sub-stages (water biomes, then land biomes).
package biome

import (
	"math"
	"math/rand"

	"biomegen/internal/kdtree"
	"biomegen/internal/progress"
	"biomegen/internal/seed"
	"biomegen/internal/workerpool"
)

// bandTables maps an equator band (0-9) to its 10-entry biome sampling
// table, sampled uniformly when assigning a biome-origin seed's tag.
var bandTables = [10][10]seed.Tag{
	{seed.TagRock, seed.TagDesert, seed.TagDesert, seed.TagDesert, seed.TagJungle, seed.TagJungle, seed.TagJungle, seed.TagForest, seed.TagForest, seed.TagPlains},
	{seed.TagRock, seed.TagDesert, seed.TagDesert, seed.TagDesert, seed.TagJungle, seed.TagJungle, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagDesert, seed.TagDesert, seed.TagJungle, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagDesert, seed.TagJungle, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagDesert, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagTaiga, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains, seed.TagPlains},
	{seed.TagRock, seed.TagSnow, seed.TagSnow, seed.TagTaiga, seed.TagTaiga, seed.TagForest, seed.TagForest, seed.TagForest, seed.TagPlains, seed.TagPlains},
	{seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagTaiga, seed.TagTaiga, seed.TagTaiga, seed.TagTaiga, seed.TagTaiga, seed.TagForest},
	{seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow, seed.TagSnow},
}

func equatorBand(y int32, height int) int {
	eq := math.Abs(float64(y)-float64(height)/2.0) / float64(height) * 20.0
	band := int(math.Floor(eq))
	if band > 9 {
		band = 9
	}
	if band < 0 {
		band = 0
	}
	return band
}

// GenerateWater normalizes every water-like seed (regular TagWater and
// special TagWaterForced) into ice, shallow water, deep water, or plain
// water, based on equator distance and distance to the nearest land.
func GenerateWater(buf *seed.Buffer, height, workers int, tracker *progress.Tracker) error {
	var landPts []kdtree.Point
	var waterIdx []int
	for i, s := range buf.Seeds {
		switch s.Tag {
		case seed.TagLand, seed.TagLandOrigin:
			landPts = append(landPts, kdtree.Point{X: s.X, Y: s.Y, Idx: i})
		case seed.TagWater, seed.TagWaterForced:
			waterIdx = append(waterIdx, i)
		}
	}
	var landTree *kdtree.Node
	if len(landPts) > 0 {
		landTree = kdtree.Build(landPts)
	}
	defer landTree.Release()

	if tracker != nil {
		tracker.SetTotal(progress.StageBiomeWater, int64(len(waterIdx)))
		tracker.StartStage(progress.StageBiomeWater)
	}

	workerpool.RunPartitioned(workerpool.Config{Workers: workers}, len(waterIdx), func(_, relStart, relEnd int) {
		for rel := relStart; rel < relEnd; rel++ {
			i := waterIdx[rel]
			s := &buf.Seeds[i]

			eq := math.Abs(float64(s.Y)-float64(height)/2.0) / float64(height) * 20.0
			landDSq := math.Inf(1)
			if landTree != nil {
				if _, distSq, ok := landTree.Nearest(s.X, s.Y); ok {
					landDSq = float64(distSq)
				}
			}

			switch {
			case (landDSq < 35*35 && eq > 9) || (landDSq < 25*25 && eq > 8) || (landDSq < 15*15 && eq > 7):
				s.Tag = seed.TagIce
			case landDSq < 18*18:
				s.Tag = seed.TagShallowWater
			case landDSq >= 35*35:
				s.Tag = seed.TagDeepWater
			default:
				s.Tag = seed.TagWater
			}

			if tracker != nil {
				tracker.Add(progress.StageBiomeWater, 1)
			}
		}
	})

	if tracker != nil {
		tracker.FinishStage(progress.StageBiomeWater)
	}
	return nil
}

// GenerateLand picks the first floor(N/10) land seeds in index order as
// biome-origin seeds, samples each one's tag from its equator band's
// table, then assigns every remaining land seed the tag of its nearest
// biome-origin seed.
func GenerateLand(buf *seed.Buffer, height, workers int, rng *rand.Rand, tracker *progress.Tracker) error {
	var landIdx []int
	for i, s := range buf.Seeds {
		if s.Tag == seed.TagLand || s.Tag == seed.TagLandOrigin {
			landIdx = append(landIdx, i)
		}
	}

	originCount := buf.N / 10
	if originCount > len(landIdx) {
		originCount = len(landIdx)
	}
	origins := landIdx[:originCount]
	rest := landIdx[originCount:]

	for _, idx := range origins {
		s := &buf.Seeds[idx]
		band := equatorBand(s.Y, height)
		s.Tag = bandTables[band][rng.Intn(10)]
	}

	pts := make([]kdtree.Point, 0, len(origins))
	for _, idx := range origins {
		s := buf.Seeds[idx]
		pts = append(pts, kdtree.Point{X: s.X, Y: s.Y, Idx: idx})
	}
	var tree *kdtree.Node
	if len(pts) > 0 {
		tree = kdtree.Build(pts)
	}
	defer tree.Release()

	if tracker != nil {
		tracker.SetTotal(progress.StageBiomeLand, int64(len(rest)))
		tracker.StartStage(progress.StageBiomeLand)
	}

	workerpool.RunPartitioned(workerpool.Config{Workers: workers}, len(rest), func(_, relStart, relEnd int) {
		for rel := relStart; rel < relEnd; rel++ {
			idx := rest[rel]
			s := &buf.Seeds[idx]
			if tree != nil {
				if originIdx, _, ok := tree.Nearest(s.X, s.Y); ok {
					s.Tag = buf.Seeds[originIdx].Tag
				}
			}
			if tracker != nil {
				tracker.Add(progress.StageBiomeLand, 1)
			}
		}
	})

	if tracker != nil {
		tracker.FinishStage(progress.StageBiomeLand)
	}
	return nil
}
