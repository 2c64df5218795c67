package step

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
)

func noopCompute(_ context.Context, _ document.Document, _ Capabilities) (interface{}, error) {
	return "ok", nil
}

func defs(n int) []Definition {
	out := make([]Definition, n)
	for i := range out {
		out[i] = Definition{ID: i, Name: string(rune('a' + i)), Compute: noopCompute}
	}
	return out
}

func TestNewCatalogueValid(t *testing.T) {
	d := defs(4)
	d[3].DependsOn = []int{1, 2}

	cat, err := NewCatalogue(d)
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	got, ok := cat.ByName("d")
	require.True(t, ok)
	assert.Equal(t, 3, got.ID)

	_, ok = cat.ByID(4)
	assert.False(t, ok)
}

func TestNewCatalogueForwardDependencyFatal(t *testing.T) {
	d := defs(3)
	d[1].DependsOn = []int{2}

	_, err := NewCatalogue(d)
	require.ErrorIs(t, err, ErrForwardDependency)
}

func TestNewCatalogueSelfDependencyFatal(t *testing.T) {
	d := defs(2)
	d[1].DependsOn = []int{1}

	_, err := NewCatalogue(d)
	require.ErrorIs(t, err, ErrSelfDependency)
}

func TestNewCatalogueRejectsBadShapes(t *testing.T) {
	_, err := NewCatalogue(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalogue)

	d := defs(2)
	d[1].ID = 5
	_, err = NewCatalogue(d)
	assert.ErrorIs(t, err, ErrNonSequentialID)

	d = defs(2)
	d[1].Name = "a"
	_, err = NewCatalogue(d)
	assert.ErrorIs(t, err, ErrDuplicateStepName)

	d = defs(2)
	d[1].Compute = nil
	_, err = NewCatalogue(d)
	assert.ErrorIs(t, err, ErrNilCompute)
}
