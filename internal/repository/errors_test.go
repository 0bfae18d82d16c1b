package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	nf := NewNotFound("idea", "abc")
	assert.Equal(t, "idea with ID 'abc' not found", nf.Error())
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("update: %w", nf)))
	assert.False(t, IsNotFound(ErrConflict{Resource: "idea", ID: "abc"}))
	assert.True(t, IsConflict(ErrConflict{Resource: "idea", ID: "abc"}))
}

func TestUnconfigured(t *testing.T) {
	var repo Repository = Unconfigured{}
	_, err := repo.ListIdeas(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, repo.InitializeTables(context.Background()), ErrNotConfigured)
}
