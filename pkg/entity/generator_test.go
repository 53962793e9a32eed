package entity

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draws = 100_000

func TestGenerators_NoCollisions(t *testing.T) {
	generators := map[string]UniqueIDGenerator[uuid.UUID]{
		GeneratorRandom:      InMemoryUniqueIDGenerator{},
		GeneratorTimeOrdered: TimeOrderedUniqueIDGenerator{},
	}
	for name, gen := range generators {
		t.Run(name, func(t *testing.T) {
			seen := make(map[uuid.UUID]struct{}, draws)
			for i := 0; i < draws; i++ {
				id := gen.NextUniqueID()
				require.NotEqual(t, uuid.Nil, id)
				_, dup := seen[id]
				require.False(t, dup, "duplicate id %s after %d draws", id, i)
				seen[id] = struct{}{}
			}
		})
	}
}

func TestGenerators_ConcurrentCallers(t *testing.T) {
	gen := InMemoryUniqueIDGenerator{}
	const workers = 8
	out := make([][]uuid.UUID, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]uuid.UUID, 0, draws/workers)
			for i := 0; i < draws/workers; i++ {
				ids = append(ids, gen.NextUniqueID())
			}
			out[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[uuid.UUID]struct{}, draws)
	for _, ids := range out {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, (draws/workers)*workers)
}

func TestInMemoryUniqueIDGenerator_Version4(t *testing.T) {
	id := InMemoryUniqueIDGenerator{}.NextUniqueID()
	assert.Equal(t, uuid.Version(4), id.Version())
	assert.Equal(t, uuid.RFC4122, id.Variant())
	assert.Len(t, id.String(), 36)
}

func TestTimeOrderedUniqueIDGenerator_Version7(t *testing.T) {
	id := TimeOrderedUniqueIDGenerator{}.NextUniqueID()
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewGenerator(t *testing.T) {
	cases := []struct {
		kind string
		want UniqueIDGenerator[uuid.UUID]
	}{
		{"", InMemoryUniqueIDGenerator{}},
		{"random", InMemoryUniqueIDGenerator{}},
		{" Time-Ordered ", TimeOrderedUniqueIDGenerator{}},
	}
	for _, tc := range cases {
		got, err := NewGenerator(tc.kind)
		require.NoError(t, err, tc.kind)
		assert.IsType(t, tc.want, got, tc.kind)
	}

	_, err := NewGenerator("sequence")
	assert.ErrorIs(t, err, ErrUnknownGenerator)
}
