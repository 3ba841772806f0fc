package knn

import (
	"container/heap"
	"math"
)

// Candidate is a neighbor considered during a query: a training label
// and its weighted distance to the query vector.
type Candidate struct {
	Label    byte
	Distance float64
}

// candidateHeap is a max-heap on distance so the worst candidate held is
// always at the root, where it can be evicted in O(log k).
type candidateHeap []Candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].Distance > h[j].Distance }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK is a bounded priority queue that retains the k smallest-distance
// candidates offered to it.
type TopK struct {
	k int
	h candidateHeap
}

// NewTopK creates a TopK holding at most k candidates.
func NewTopK(k int) *TopK {
	if k < 1 {
		k = 1
	}
	return &TopK{
		k: k,
		h: make(candidateHeap, 0, k),
	}
}

// Len returns the number of candidates currently held.
func (q *TopK) Len() int {
	return q.h.Len()
}

// Full reports whether the queue holds k candidates.
func (q *TopK) Full() bool {
	return q.h.Len() >= q.k
}

// Offer inserts the candidate if the queue is not yet full, or replaces
// the current worst candidate if the new distance is strictly smaller.
// Otherwise the candidate is discarded.
func (q *TopK) Offer(c Candidate) {
	if !q.Full() {
		heap.Push(&q.h, c)
		return
	}
	if c.Distance < q.h[0].Distance {
		heap.Pop(&q.h)
		heap.Push(&q.h, c)
	}
}

// WorstDistance returns the largest distance currently held, or +Inf
// while the queue is not yet full. Query pruning compares the splitting
// hyperplane distance against this value.
func (q *TopK) WorstDistance() float64 {
	if !q.Full() {
		return math.Inf(1)
	}
	return q.h[0].Distance
}

// Drain returns all held candidates in heap-internal order and empties
// the queue. Callers needing a ranked list must sort the result.
func (q *TopK) Drain() []Candidate {
	out := q.h
	q.h = make(candidateHeap, 0, q.k)
	return out
}
