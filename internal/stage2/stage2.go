// Package stage2 implements section assignment: deciding land vs. water for
// every regular seed from its distance to the nearest land-origin seed and
// that origin's per-origin threshold.
package stage2

import (
	"math"

	"biomegen/internal/kdtree"
	"biomegen/internal/progress"
	"biomegen/internal/seed"
	"biomegen/internal/workerpool"
)

// Assign tags every regular seed TagLand or TagWater. islandSizeTimes10 is
// the raw x10 parameter (range 10-100); the real island_size is that value
// divided by 10.
func Assign(buf *seed.Buffer, mapResolution, islandSizeTimes10, workers int, rngFor seed.RNGFactory, tracker *progress.Tracker) error {
	start, end := buf.RegularRange()
	regularLen := end - start

	if tracker != nil {
		tracker.SetTotal(progress.StageAssignment, int64(regularLen))
		tracker.StartStage(progress.StageAssignment)
	}

	originStart, originEnd := buf.LandOriginRange()
	points := make([]kdtree.Point, 0, originEnd-originStart)
	for i := originStart; i < originEnd; i++ {
		s := buf.Seeds[i]
		points = append(points, kdtree.Point{X: s.X, Y: s.Y, Idx: i})
	}
	tree := kdtree.Build(points)
	defer tree.Release()

	islandSize := float64(islandSizeTimes10) / 10.0
	sqrtRes := math.Sqrt(float64(mapResolution))

	workerpool.RunPartitioned(workerpool.Config{Workers: workers}, regularLen, func(workerIdx, relStart, relEnd int) {
		rng := rngFor(workerIdx)
		for rel := relStart; rel < relEnd; rel++ {
			i := start + rel
			s := &buf.Seeds[i]

			if tree == nil {
				// No land-origin seeds at all: nothing to anchor an
				// island on, stays water.
				if tracker != nil {
					tracker.Add(progress.StageAssignment, 1)
				}
				continue
			}

			originIdx, distSq, ok := tree.Nearest(s.X, s.Y)
			if !ok {
				if tracker != nil {
					tracker.Add(progress.StageAssignment, 1)
				}
				continue
			}

			d := math.Sqrt(float64(distSq)) / sqrtRes
			threshold := (float64(originIdx%20)/19.0*1.5 + 0.25) * islandSize

			chance := 1
			if d <= threshold {
				chance = 9
			}
			if rng.Intn(10) < chance {
				s.Tag = seed.TagLand
			} else {
				s.Tag = seed.TagWater
			}

			if tracker != nil {
				tracker.Add(progress.StageAssignment, 1)
			}
		}
	})

	if tracker != nil {
		tracker.FinishStage(progress.StageAssignment)
	}
	return nil
}
