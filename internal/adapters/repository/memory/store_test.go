package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.Load(ctx, "location_info")
	assert.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)

	cp := &checkpoint.Checkpoint{
		StepID:   1,
		StepName: "location_info",
		Value:    map[string]interface{}{"state": "California"},
		Version:  checkpoint.CurrentVersion,
	}
	require.NoError(t, store.Save(ctx, cp))

	loaded, err := store.Load(ctx, "location_info")
	require.NoError(t, err)
	value, ok := loaded.Value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "California", value["state"])

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"location_info"}, names)

	require.NoError(t, store.ClearAll(ctx))
	_, err = store.Load(ctx, "location_info")
	assert.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)
}
