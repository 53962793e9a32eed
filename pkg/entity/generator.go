package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UniqueIDGenerator mints fresh raw identifiers.
// Implementations must be safe for concurrent use.
type UniqueIDGenerator[T any] interface {
	NextUniqueID() T
}

// Generator kinds accepted by NewGenerator.
const (
	GeneratorRandom      = "random"
	GeneratorTimeOrdered = "time-ordered"
)

// InMemoryUniqueIDGenerator returns random (version 4) UUIDs.
// It is stateless, so instances in different processes need no coordination.
type InMemoryUniqueIDGenerator struct{}

func (InMemoryUniqueIDGenerator) NextUniqueID() uuid.UUID {
	return uuid.New()
}

// TimeOrderedUniqueIDGenerator returns version 7 UUIDs, which sort by creation time.
type TimeOrderedUniqueIDGenerator struct{}

func (TimeOrderedUniqueIDGenerator) NextUniqueID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewGenerator returns the generator registered under kind.
// An empty kind selects the random generator.
func NewGenerator(kind string) (UniqueIDGenerator[uuid.UUID], error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", GeneratorRandom:
		return InMemoryUniqueIDGenerator{}, nil
	case GeneratorTimeOrdered:
		return TimeOrderedUniqueIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, kind)
	}
}
