// Package kdtree implements a 2-D KD-tree over integer coordinates carrying
// an integer payload (the owning seed's index). Build uses recursive median
// partition via randomized quickselect; queries use best-first recursion
// with squared-distance pruning, never taking a square root on the hot path.
package kdtree

import (
	"math"
	"math/rand"
)

// Point is one build input: a coordinate and the payload index it carries.
type Point struct {
	X, Y int32
	Idx  int
}

// Node is one KD-tree node. Left/Right are owned and either may be nil.
type Node struct {
	X, Y  int32
	Idx   int
	Left  *Node
	Right *Node
}

// Build constructs a tree from points, splitting on the x axis at even
// depths and the y axis at odd depths. The median element at each depth
// becomes that level's node; the two halves recurse. Build does not mutate
// the caller's slice. The pivot source is seeded with a constant, so the same
// input in the same order always yields the same tree, and queries resolve
// distance ties the same way on every run.
func Build(points []Point) *Node {
	if len(points) == 0 {
		return nil
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	return build(pts, 0, rand.New(rand.NewSource(1)))
}

func build(pts []Point, depth int, rng *rand.Rand) *Node {
	n := len(pts)
	if n == 0 {
		return nil
	}
	axis := depth % 2
	mid := n / 2
	quickselect(pts, 0, n-1, mid, axis, rng)
	median := pts[mid]
	node := &Node{X: median.X, Y: median.Y, Idx: median.Idx}
	node.Left = build(pts[:mid], depth+1, rng)
	node.Right = build(pts[mid+1:], depth+1, rng)
	return node
}

func coord(p Point, axis int) int32 {
	if axis == 0 {
		return p.X
	}
	return p.Y
}

// quickselect partitions pts[lo..hi] in place, by the given axis, so that
// index k holds the value it would hold after a full sort, using a
// randomized pivot (Lomuto-style partition).
func quickselect(pts []Point, lo, hi, k, axis int, rng *rand.Rand) {
	for lo < hi {
		p := partition(pts, lo, hi, axis, rng)
		switch {
		case k == p:
			return
		case k < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func partition(pts []Point, lo, hi, axis int, rng *rand.Rand) int {
	pivotIdx := lo + rng.Intn(hi-lo+1)
	pts[pivotIdx], pts[hi] = pts[hi], pts[pivotIdx]
	pivot := coord(pts[hi], axis)

	i := lo
	for j := lo; j < hi; j++ {
		if coord(pts[j], axis) < pivot {
			pts[i], pts[j] = pts[j], pts[i]
			i++
		}
	}
	pts[i], pts[hi] = pts[hi], pts[i]
	return i
}

// Nearest returns the payload index and squared distance of the node
// nearest to (x, y). found is false only for an empty tree.
func (n *Node) Nearest(x, y int32) (idx int, distSq int64, found bool) {
	return n.NearestBounded(x, y, math.MaxInt64)
}

// NearestBounded behaves like Nearest but starts pruning from an initial
// bound instead of +Inf. The caller is responsible for the bound being a
// true upper bound on the nearest distance; an unsafe bound only risks
// missing the true nearest, never panicking.
func (n *Node) NearestBounded(x, y int32, boundSq int64) (idx int, distSq int64, found bool) {
	if n == nil {
		return 0, 0, false
	}
	bestIdx := -1
	bestDist := boundSq
	n.nearest(x, y, 0, &bestIdx, &bestDist)
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, bestDist, true
}

func (n *Node) nearest(x, y int32, depth int, bestIdx *int, bestDist *int64) {
	if n == nil {
		return
	}
	dx := int64(x - n.X)
	dy := int64(y - n.Y)
	d := dx*dx + dy*dy
	if d < *bestDist {
		*bestDist = d
		*bestIdx = n.Idx
	}

	axis := depth % 2
	var diff int64
	if axis == 0 {
		diff = int64(x - n.X)
	} else {
		diff = int64(y - n.Y)
	}

	near, far := n.Left, n.Right
	if diff > 0 {
		near, far = n.Right, n.Left
	}
	near.nearest(x, y, depth+1, bestIdx, bestDist)
	if diff*diff < *bestDist {
		far.nearest(x, y, depth+1, bestIdx, bestDist)
	}
}

// BoundedKNN fills dists (length k, pre-filled by the caller with a
// sentinel such as math.MaxInt64) with the k smallest squared distances to
// (x, y) found in the tree, sorted ascending, excluding the query's own
// coordinate (distance zero is ignored). The caller may preseed dists with
// a tighter bound to prune more aggressively; this only changes which
// candidates get visited, never the correctness of what survives.
func (n *Node) BoundedKNN(x, y int32, dists []int64) {
	if n == nil || len(dists) == 0 {
		return
	}
	n.knn(x, y, 0, dists)
}

func (n *Node) knn(x, y int32, depth int, dists []int64) {
	if n == nil {
		return
	}
	k := len(dists)
	dx := int64(x - n.X)
	dy := int64(y - n.Y)
	d := dx*dx + dy*dy
	if d != 0 && d < dists[k-1] {
		insertSorted(dists, d)
	}

	axis := depth % 2
	var diff int64
	if axis == 0 {
		diff = int64(x - n.X)
	} else {
		diff = int64(y - n.Y)
	}

	near, far := n.Left, n.Right
	if diff > 0 {
		near, far = n.Right, n.Left
	}
	near.knn(x, y, depth+1, dists)
	if diff*diff < dists[k-1] {
		far.knn(x, y, depth+1, dists)
	}
}

func insertSorted(dists []int64, d int64) {
	i := len(dists) - 1
	for i > 0 && dists[i-1] > d {
		dists[i] = dists[i-1]
		i--
	}
	dists[i] = d
}

// Depth returns the tree's height (1 for a single node, 0 for nil), used by
// tests asserting the build stays within ceil(log2(n))+2.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	l := n.Left.Depth()
	r := n.Right.Depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	return 1 + n.Left.Count() + n.Right.Count()
}

// Release drops this node's children. Go's garbage collector reclaims the
// subtree once it becomes unreachable; Release exists so callers can
// express "this tree's lifetime ends here" explicitly, matching the
// reference's post-order free and making tree lifetime visible in tests.
func (n *Node) Release() {
	if n == nil {
		return
	}
	n.Left.Release()
	n.Right.Release()
	n.Left = nil
	n.Right = nil
}
