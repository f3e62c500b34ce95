// Package stage3 implements the coastline smoother: two barrier-separated
// passes that reclassify each regular seed by comparing its k-nearest-land
// sum of squared distances against its k-nearest-water sum.
package stage3

import (
	"math"

	"biomegen/internal/kdtree"
	"biomegen/internal/progress"
	"biomegen/internal/seed"
	"biomegen/internal/workerpool"
)

// Smooth applies the reclassification pass twice in sequence, each pass
// building fresh land/water trees from the seed state at that pass's
// start. k=0 is a no-op. The preseeded-bound row-scan optimization
// mentioned for the reference implementation is deliberately not applied
// here: its floating-point bound derivation can underestimate the true
// distance and produce wrong k-NN results, so every query starts from the
// full sentinel bound instead.
func Smooth(buf *seed.Buffer, k, workers int, tracker *progress.Tracker) error {
	if k == 0 {
		return nil
	}

	start, end := buf.RegularRange()
	regularLen := end - start

	if tracker != nil {
		tracker.SetTotal(progress.StageSmoothing, int64(regularLen)*2)
		tracker.StartStage(progress.StageSmoothing)
	}

	runPass(buf, k, workers, tracker)
	runPass(buf, k, workers, tracker)

	if tracker != nil {
		tracker.FinishStage(progress.StageSmoothing)
	}
	return nil
}

func runPass(buf *seed.Buffer, k, workers int, tracker *progress.Tracker) {
	landTree, waterTree := buildTrees(buf)
	defer landTree.Release()
	defer waterTree.Release()

	start, end := buf.RegularRange()
	length := end - start
	newTags := make([]seed.Tag, length)

	workerpool.RunPartitioned(workerpool.Config{Workers: workers}, length, func(_, relStart, relEnd int) {
		landDists := make([]int64, k)
		waterDists := make([]int64, k)

		for rel := relStart; rel < relEnd; rel++ {
			i := start + rel
			s := buf.Seeds[i]
			newTags[rel] = s.Tag

			switch s.Tag {
			case seed.TagLand:
				if waterTree != nil {
					resetDists(landDists)
					resetDists(waterDists)
					landTree.BoundedKNN(s.X, s.Y, landDists)
					waterTree.BoundedKNN(s.X, s.Y, waterDists)
					if sum(waterDists) < sum(landDists) {
						newTags[rel] = seed.TagWater
					}
				}
			case seed.TagWater:
				if landTree != nil {
					resetDists(landDists)
					resetDists(waterDists)
					landTree.BoundedKNN(s.X, s.Y, landDists)
					waterTree.BoundedKNN(s.X, s.Y, waterDists)
					if sum(landDists) < sum(waterDists) {
						newTags[rel] = seed.TagLand
					}
				}
			}

			if tracker != nil {
				tracker.Add(progress.StageSmoothing, 1)
			}
		}
	})

	for rel := 0; rel < length; rel++ {
		buf.Seeds[start+rel].Tag = newTags[rel]
	}
}

// buildTrees partitions every land-like and water-like seed (special and
// regular alike — they all occupy space the smoother must account for)
// into two fresh KD-trees reflecting the seed state at the moment of the
// call.
func buildTrees(buf *seed.Buffer) (land, water *kdtree.Node) {
	var landPts, waterPts []kdtree.Point
	for i, s := range buf.Seeds {
		switch s.Tag {
		case seed.TagLand, seed.TagLandOrigin:
			landPts = append(landPts, kdtree.Point{X: s.X, Y: s.Y, Idx: i})
		case seed.TagWater, seed.TagWaterForced:
			waterPts = append(waterPts, kdtree.Point{X: s.X, Y: s.Y, Idx: i})
		}
	}
	if len(landPts) > 0 {
		land = kdtree.Build(landPts)
	}
	if len(waterPts) > 0 {
		water = kdtree.Build(waterPts)
	}
	return
}

func resetDists(dists []int64) {
	for i := range dists {
		dists[i] = math.MaxInt64
	}
}

func sum(dists []int64) int64 {
	var total int64
	for _, d := range dists {
		total += d
	}
	return total
}
