package knn

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Endy3032/signid/internal/landmark"
)

// flatVec returns a FeatureDim vector with every coordinate set to v and
// the given handedness in the final slot.
func flatVec(v float32, handedness float32) []float32 {
	vec := make([]float32, landmark.FeatureDim)
	for i := range vec {
		vec[i] = v
	}
	vec[landmark.HandednessIndex] = handedness
	return vec
}

// randomSamples generates n labeled vectors spread out enough that each
// point is its own nearest neighbor.
func randomSamples(n int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]Sample, n)
	for i := range samples {
		vec := make([]float32, landmark.FeatureDim)
		for j := range vec {
			vec[j] = rng.Float32() * 100
		}
		vec[landmark.HandednessIndex] = float32(i % 2)
		samples[i] = Sample{Vector: vec, Label: byte('A' + i%24)}
	}
	return samples
}

func TestBuild_EmptyDataset(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestBuild_DimensionMismatch(t *testing.T) {
	samples := []Sample{
		{Vector: flatVec(1, 0), Label: 'A'},
		{Vector: make([]float32, 10), Label: 'B'},
	}
	if _, err := Build(samples); !errors.Is(err, landmark.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestBuild_SinglePoint(t *testing.T) {
	vec := flatVec(1, 0)
	tree, err := Build([]Sample{{Vector: vec, Label: 'Q'}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	root := tree.root
	if root.splitDim != 0 {
		t.Errorf("expected root splitDim 0, got %d", root.splitDim)
	}
	if root.splitValue != vec[0] {
		t.Errorf("expected root splitValue %f, got %f", vec[0], root.splitValue)
	}
	if root.left != nil || root.right != nil {
		t.Error("single-point tree should have no children")
	}

	label, err := tree.Query(vec, 1, DefaultHandednessWeight)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if label != 'Q' {
		t.Errorf("expected label 'Q', got %q", label)
	}
}

func TestBuild_DoesNotReorderInput(t *testing.T) {
	samples := randomSamples(20, 3)
	labelsBefore := make([]byte, len(samples))
	for i, s := range samples {
		labelsBefore[i] = s.Label
	}

	if _, err := Build(samples); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for i, s := range samples {
		if s.Label != labelsBefore[i] {
			t.Fatalf("Build reordered the caller's sample slice at index %d", i)
		}
	}
}

func TestQuery_SelfRetrieval(t *testing.T) {
	samples := randomSamples(200, 11)
	tree, err := Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if tree.Size() != len(samples) {
		t.Fatalf("expected %d nodes, got %d", len(samples), tree.Size())
	}

	// Every training point is its own nearest neighbor at k=1
	for i, s := range samples {
		label, err := tree.Query(s.Vector, 1, DefaultHandednessWeight)
		if err != nil {
			t.Fatalf("sample %d: Query failed: %v", i, err)
		}
		if label != s.Label {
			t.Errorf("sample %d: expected label %q, got %q", i, s.Label, label)
		}
	}
}

func TestQuery_PerturbedNearestNeighbor(t *testing.T) {
	v1 := flatVec(0, 0)
	v2 := flatVec(0, 0)
	v2[0] += 10 // differ only in the first coordinate

	tree, err := Build([]Sample{
		{Vector: v1, Label: 'A'},
		{Vector: v2, Label: 'B'},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	query := flatVec(0, 0)
	query[0] += 0.01

	label, err := tree.Query(query, 1, DefaultHandednessWeight)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if label != 'A' {
		t.Errorf("expected 'A' for a small perturbation of v1, got %q", label)
	}
}

func TestQuery_HandednessPenalty(t *testing.T) {
	// A spatially distant same-hand point must beat a spatially identical
	// opposite-hand point because the handedness term is amplified.
	sameHand := flatVec(0, 0)
	sameHand[0] += 5
	oppositeHand := flatVec(0, 1)

	tree, err := Build([]Sample{
		{Vector: sameHand, Label: 'S'},
		{Vector: oppositeHand, Label: 'O'},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	label, err := tree.Query(flatVec(0, 0), 1, DefaultHandednessWeight)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if label != 'S' {
		t.Errorf("expected same-hand neighbor 'S', got %q", label)
	}
}

func TestQuery_MajorityVote(t *testing.T) {
	// Three 'A' points near the query and one far 'B' point: k=3 must
	// resolve to 'A' even though a single nearest neighbor would too.
	samples := []Sample{
		{Vector: flatVec(0, 0), Label: 'A'},
		{Vector: flatVec(0.1, 0), Label: 'A'},
		{Vector: flatVec(0.2, 0), Label: 'A'},
		{Vector: flatVec(50, 0), Label: 'B'},
	}
	tree, err := Build(samples)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	label, err := tree.Query(flatVec(0.05, 0), DefaultK, DefaultHandednessWeight)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if label != 'A' {
		t.Errorf("expected majority label 'A', got %q", label)
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	tree := &Tree{}
	if _, err := tree.Query(flatVec(0, 0), 1, DefaultHandednessWeight); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestQuery_DimensionMismatch(t *testing.T) {
	tree, err := Build([]Sample{{Vector: flatVec(1, 0), Label: 'A'}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := tree.Query(make([]float32, 32), 1, DefaultHandednessWeight); !errors.Is(err, landmark.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestVote_CountWins(t *testing.T) {
	label := vote([]Candidate{
		{Label: 'B', Distance: 0.1},
		{Label: 'A', Distance: 5},
		{Label: 'A', Distance: 6},
	})
	if label != 'A' {
		t.Errorf("expected count to beat proximity, got %q", label)
	}
}

func TestVote_TieBrokenBySummedDistance(t *testing.T) {
	// Two labels with equal counts: 'B' has the lower summed distance
	label := vote([]Candidate{
		{Label: 'A', Distance: 1},
		{Label: 'A', Distance: 4},
		{Label: 'B', Distance: 2},
		{Label: 'B', Distance: 2.5},
	})
	if label != 'B' {
		t.Errorf("expected 'B' to win on summed distance, got %q", label)
	}
}

func TestVote_FullTieKeepsFirstDrained(t *testing.T) {
	// Equal count and equal summed distance: the first label in the
	// drained order is kept.
	label := vote([]Candidate{
		{Label: 'X', Distance: 3},
		{Label: 'Y', Distance: 3},
	})
	if label != 'X' {
		t.Errorf("expected first-drained label 'X', got %q", label)
	}
}
