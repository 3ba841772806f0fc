// Package knn implements the KD-tree index and weighted k-nearest-neighbor
// classification used to recognize fingerspelled letters from scaled
// hand-landmark feature vectors.
package knn

import (
	"errors"
	"math"
	"sort"

	"github.com/Endy3032/signid/internal/landmark"
)

// Query defaults matching the trained model's expectations.
const (
	// DefaultK is the number of neighbors consulted per query.
	DefaultK = 3
	// DefaultHandednessWeight amplifies the handedness dimension so
	// opposite-hand neighbors are heavily penalized regardless of
	// spatial proximity.
	DefaultHandednessWeight = 10
)

// ErrEmptyDataset is returned when Build is called with no samples.
var ErrEmptyDataset = errors.New("cannot build index from empty dataset")

// ErrEmptyIndex is returned when Query is called on an empty tree.
var ErrEmptyIndex = errors.New("index is empty")

// Sample pairs a feature vector with its letter label.
type Sample struct {
	Vector []float32
	Label  byte
}

// node is one KD-tree node. Every node stores a full training vector;
// splitDim cycles through the dimensions with depth and splitValue is
// the node's own coordinate on that dimension.
type node struct {
	point      []float32
	label      byte
	splitDim   int
	splitValue float32
	left       *node
	right      *node
}

// Tree is a balanced KD-tree over labeled feature vectors. It is built
// once and never mutated; concurrent queries are safe after Build or
// UnmarshalTree returns.
type Tree struct {
	root *node
}

// Build constructs a balanced KD-tree from the samples. The split
// dimension cycles with depth; each subset is sorted on it and the
// median element becomes the subtree root, with the strict left slice
// and the slice after the median recursing one level deeper.
// Returns ErrEmptyDataset for an empty slice and
// landmark.ErrDimensionMismatch if any vector is not FeatureDim long.
func Build(samples []Sample) (*Tree, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	for _, s := range samples {
		if len(s.Vector) != landmark.FeatureDim {
			return nil, landmark.ErrDimensionMismatch
		}
	}

	// Work on a copy so sorting never reorders the caller's slice
	subset := make([]Sample, len(samples))
	copy(subset, samples)

	return &Tree{root: build(subset, 0)}, nil
}

func build(subset []Sample, depth int) *node {
	if len(subset) == 0 {
		return nil
	}

	splitDim := depth % landmark.FeatureDim

	if len(subset) == 1 {
		s := subset[0]
		return &node{
			point:      s.Vector,
			label:      s.Label,
			splitDim:   splitDim,
			splitValue: s.Vector[splitDim],
		}
	}

	sort.Slice(subset, func(i, j int) bool {
		return subset[i].Vector[splitDim] < subset[j].Vector[splitDim]
	})

	medianIdx := len(subset) / 2
	s := subset[medianIdx]

	return &node{
		point:      s.Vector,
		label:      s.Label,
		splitDim:   splitDim,
		splitValue: s.Vector[splitDim],
		left:       build(subset[:medianIdx], depth+1),
		right:      build(subset[medianIdx+1:], depth+1),
	}
}

// Empty reports whether the tree holds no nodes.
func (t *Tree) Empty() bool {
	return t == nil || t.root == nil
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return size(t.root)
}

func size(n *node) int {
	if n == nil {
		return 0
	}
	return 1 + size(n.left) + size(n.right)
}

// Query finds the k nearest training samples to the vector under the
// weighted Euclidean metric and returns the majority-vote label. Ties on
// count are broken by the lower summed distance across a label's
// occurrences; remaining ties resolve to whichever neighbor is drained
// first, which is stable for a given tree but carries no ranking meaning.
// Returns ErrEmptyIndex for an empty tree and
// landmark.ErrDimensionMismatch for a wrong-length vector.
func (t *Tree) Query(vec []float32, k int, handednessWeight float64) (byte, error) {
	if t.Empty() {
		return 0, ErrEmptyIndex
	}
	if len(vec) != landmark.FeatureDim {
		return 0, landmark.ErrDimensionMismatch
	}
	if k < 1 {
		k = 1
	}

	q := NewTopK(k)
	search(t.root, vec, handednessWeight, q)

	return vote(q.Drain()), nil
}

// search walks the tree depth-first, descending the near side of each
// split first and visiting the far side only while the splitting
// hyperplane could still hold a closer point than the current k-th best.
func search(n *node, vec []float32, weight float64, q *TopK) {
	if n == nil {
		return
	}

	q.Offer(Candidate{
		Label:    n.label,
		Distance: distance(vec, n.point, weight),
	})

	diff := float64(vec[n.splitDim] - n.splitValue)

	near, far := n.left, n.right
	if diff >= 0 {
		near, far = n.right, n.left
	}

	search(near, vec, weight, q)

	if !q.Full() || math.Abs(diff) < q.WorstDistance() {
		search(far, vec, weight, q)
	}
}

// distance is the weighted Euclidean metric: plain squared differences
// over the 63 coordinate dimensions, with the handedness difference
// scaled by weight before squaring.
func distance(a, b []float32, weight float64) float64 {
	var sum float64
	for i := 0; i < landmark.HandednessIndex; i++ {
		d := float64(a[i] - b[i])
		sum += d * d
	}

	dh := weight * float64(a[landmark.HandednessIndex]-b[landmark.HandednessIndex])
	sum += dh * dh

	return math.Sqrt(sum)
}

// vote tallies the candidates per label. The winner has the highest
// count; equal counts fall back to the lower summed distance, then to
// the label seen first in the drained order.
func vote(candidates []Candidate) byte {
	counts := make(map[byte]int)
	sums := make(map[byte]float64)
	var order []byte

	for _, c := range candidates {
		if _, seen := counts[c.Label]; !seen {
			order = append(order, c.Label)
		}
		counts[c.Label]++
		sums[c.Label] += c.Distance
	}

	best := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[best] {
			best = label
		} else if counts[label] == counts[best] && sums[label] < sums[best] {
			best = label
		}
	}

	return best
}
