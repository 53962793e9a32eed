package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(_ context.Context) error { return s.err }

func TestService_Ready(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewService().Ready(ctx))
	assert.NoError(t, NewService(stubChecker{name: "db"}).Ready(ctx))

	boom := errors.New("boom")
	err := NewService(stubChecker{name: "db"}, stubChecker{name: "sqlite", err: boom}).Ready(ctx)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "sqlite: boom")
}
