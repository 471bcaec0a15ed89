package rank

import "container/heap"

// TopK retains the K best candidates seen so far. Insertion is O(log K)
// against a min-heap keyed by the Better order, with the worst kept
// candidate at the root; once full, a new candidate enters only by
// beating that root. Not safe for concurrent use; each sub-query owns
// its own selector.
type TopK struct {
	k     int
	items candidateHeap
}

// NewTopK returns a selector keeping the best k candidates. k must be
// positive.
func NewTopK(k int) *TopK {
	if k < 1 {
		k = 1
	}
	return &TopK{k: k, items: make(candidateHeap, 0, k)}
}

// Push offers a candidate to the selector.
func (t *TopK) Push(c Candidate) {
	if len(t.items) < t.k {
		heap.Push(&t.items, c)
		return
	}
	if Better(c, t.items[0]) {
		t.items[0] = c
		heap.Fix(&t.items, 0)
	}
}

// Len returns the number of retained candidates.
func (t *TopK) Len() int { return len(t.items) }

// Sorted drains the selector and returns the retained candidates best
// first. The selector is empty afterwards.
func (t *TopK) Sorted() []Candidate {
	out := make([]Candidate, len(t.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.items).(Candidate)
	}
	return out
}

// candidateHeap is a min-heap under the Better order: the root is the
// worst retained candidate.
type candidateHeap []Candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return Better(h[j], h[i]) }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(Candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
