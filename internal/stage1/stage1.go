// Package stage1 implements seed-point placement: drawing N unique integer
// coordinates and tagging them land-origin, water-forced, or water by their
// position in the shared buffer's index layout.
package stage1

import (
	"sync"

	"biomegen/internal/progress"
	"biomegen/internal/seed"
	"biomegen/internal/workerpool"
)

// Place draws buf.N unique coordinates in [0,width)x[0,height) and tags
// each by its index per seed.Buffer's layout contract. Workers claim
// disjoint index ranges and race on a shared occupancy set only through a
// mutex guarding coordinate collision checks; the final value placed at
// each index never changes hands between workers.
func Place(buf *seed.Buffer, width, height, workers int, rngFor seed.RNGFactory, tracker *progress.Tracker) error {
	if tracker != nil {
		tracker.SetTotal(progress.StagePlacement, int64(buf.N))
		tracker.StartStage(progress.StagePlacement)
	}

	var mu sync.Mutex
	occupied := make(map[[2]int32]struct{}, buf.N)

	workerpool.RunPartitioned(workerpool.Config{Workers: workers}, buf.N, func(workerIdx, start, end int) {
		rng := rngFor(workerIdx)
		for i := start; i < end; i++ {
			for {
				x := int32(rng.Intn(width))
				y := int32(rng.Intn(height))
				key := [2]int32{x, y}

				mu.Lock()
				if _, dup := occupied[key]; dup {
					mu.Unlock()
					continue
				}
				occupied[key] = struct{}{}
				mu.Unlock()

				buf.Seeds[i] = seed.Seed{X: x, Y: y, Tag: buf.TagForIndex(i)}
				break
			}
		}
		if tracker != nil {
			tracker.Add(progress.StagePlacement, int64(end-start))
		}
	})

	if tracker != nil {
		tracker.FinishStage(progress.StagePlacement)
	}
	return nil
}
