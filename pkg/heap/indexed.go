// Package heap provides an indexed binary min-heap over an externally owned key slice.
package heap

import (
	"cmp"
	"fmt"

	"github.com/aretw0/tactic/pkg/domain"
)

const absent = -1

// Indexed is a binary min-heap of indices into a key slice owned by the caller.
// The heap never copies keys: every comparison reads keys[i] directly, so the
// caller may lower a key in place and then call DecreaseKey.
//
// Indices must lie in [0, len(keys)). Indexed is not safe for concurrent use.
type Indexed[K cmp.Ordered] struct {
	keys    []K
	heap    []int
	slot    []int // index -> position in heap, or absent
	maxSize int
}

// NewIndexed creates an empty heap over keys holding at most maxSize entries.
func NewIndexed[K cmp.Ordered](keys []K, maxSize int) *Indexed[K] {
	slot := make([]int, len(keys))
	for i := range slot {
		slot[i] = absent
	}
	return &Indexed[K]{
		keys:    keys,
		heap:    make([]int, 0, maxSize),
		slot:    slot,
		maxSize: maxSize,
	}
}

// Insert adds idx to the heap.
func (h *Indexed[K]) Insert(idx int) error {
	if len(h.heap) >= h.maxSize {
		return fmt.Errorf("insert %d: %w (max %d)", idx, domain.ErrCapacityExceeded, h.maxSize)
	}
	if idx < 0 || idx >= len(h.keys) {
		return fmt.Errorf("insert %d: index out of range [0,%d)", idx, len(h.keys))
	}
	if h.slot[idx] != absent {
		return fmt.Errorf("insert %d: already queued", idx)
	}
	h.heap = append(h.heap, idx)
	h.slot[idx] = len(h.heap) - 1
	h.up(len(h.heap) - 1)
	return nil
}

// PopMin removes and returns the index with the smallest key.
func (h *Indexed[K]) PopMin() (int, error) {
	if len(h.heap) == 0 {
		return absent, domain.ErrEmptyQueue
	}
	last := len(h.heap) - 1
	h.swap(0, last)
	idx := h.heap[last]
	h.heap = h.heap[:last]
	h.slot[idx] = absent
	if last > 0 {
		h.down(0)
	}
	return idx, nil
}

// DecreaseKey restores heap order after the key of idx has been lowered.
func (h *Indexed[K]) DecreaseKey(idx int) error {
	if !h.Contains(idx) {
		return fmt.Errorf("decrease key %d: %w", idx, domain.ErrNotQueued)
	}
	h.up(h.slot[idx])
	return nil
}

// Contains reports whether idx is currently queued.
func (h *Indexed[K]) Contains(idx int) bool {
	return idx >= 0 && idx < len(h.slot) && h.slot[idx] != absent
}

func (h *Indexed[K]) IsEmpty() bool { return len(h.heap) == 0 }

func (h *Indexed[K]) Len() int { return len(h.heap) }

func (h *Indexed[K]) less(a, b int) bool {
	return cmp.Less(h.keys[h.heap[a]], h.keys[h.heap[b]])
}

func (h *Indexed[K]) swap(a, b int) {
	h.heap[a], h.heap[b] = h.heap[b], h.heap[a]
	h.slot[h.heap[a]] = a
	h.slot[h.heap[b]] = b
}

func (h *Indexed[K]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Indexed[K]) down(i int) {
	n := len(h.heap)
	for {
		child := 2*i + 1
		if child >= n {
			return
		}
		// right child wins only when strictly smaller
		if right := child + 1; right < n && h.less(right, child) {
			child = right
		}
		if !h.less(child, i) {
			return
		}
		h.swap(i, child)
		i = child
	}
}
