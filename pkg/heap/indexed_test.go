package heap_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/aretw0/tactic/pkg/domain"
	"github.com/aretw0/tactic/pkg/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[K int | float64](t *testing.T, h *heap.Indexed[K], keys []K) []K {
	t.Helper()
	var out []K
	for !h.IsEmpty() {
		idx, err := h.PopMin()
		require.NoError(t, err)
		out = append(out, keys[idx])
	}
	return out
}

func TestIndexed_PopsInOrder(t *testing.T) {
	t.Run("With Duplicates", func(t *testing.T) {
		keys := []int{5, 3, 3, 9, 1, 1, 7, 0, 3}
		h := heap.NewIndexed(keys, len(keys))
		for i := range keys {
			require.NoError(t, h.Insert(i))
		}
		got := drain(t, h, keys)
		want := slices.Clone(keys)
		slices.Sort(want)
		assert.Equal(t, want, got)
	})

	t.Run("Random Permutations", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(1, 2))
		for round := 0; round < 50; round++ {
			n := 1 + rng.IntN(40)
			keys := make([]float64, n)
			for i := range keys {
				keys[i] = float64(rng.IntN(10))
			}
			h := heap.NewIndexed(keys, n)
			for _, i := range rng.Perm(n) {
				require.NoError(t, h.Insert(i))
			}
			got := drain(t, h, keys)
			assert.True(t, slices.IsSorted(got), "round %d: %v", round, got)
			assert.Len(t, got, n)
		}
	})
}

func TestIndexed_DecreaseKey(t *testing.T) {
	keys := []float64{10, 20, 30, 40}
	h := heap.NewIndexed(keys, 4)
	for i := range keys {
		require.NoError(t, h.Insert(i))
	}

	keys[3] = 1
	require.NoError(t, h.DecreaseKey(3))

	idx, err := h.PopMin()
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	err = h.DecreaseKey(3)
	assert.ErrorIs(t, err, domain.ErrNotQueued)
}

func TestIndexed_Errors(t *testing.T) {
	keys := []int{1, 2, 3}

	t.Run("Capacity Exceeded", func(t *testing.T) {
		h := heap.NewIndexed(keys, 2)
		require.NoError(t, h.Insert(0))
		require.NoError(t, h.Insert(1))
		err := h.Insert(2)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		assert.Equal(t, 2, h.Len())
	})

	t.Run("Empty Queue", func(t *testing.T) {
		h := heap.NewIndexed(keys, 3)
		assert.True(t, h.IsEmpty())
		_, err := h.PopMin()
		assert.ErrorIs(t, err, domain.ErrEmptyQueue)
	})

	t.Run("Duplicate Insert", func(t *testing.T) {
		h := heap.NewIndexed(keys, 3)
		require.NoError(t, h.Insert(1))
		assert.Error(t, h.Insert(1))
		assert.True(t, h.Contains(1))
		assert.False(t, h.Contains(0))
	})
}
