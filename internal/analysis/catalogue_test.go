package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalogue(t *testing.T) {
	cat, err := BuildCatalogue()
	require.NoError(t, err)
	require.Equal(t, 13, cat.Len())

	first, ok := cat.ByID(0)
	require.True(t, ok)
	assert.Equal(t, StepSpeakerMapping, first.Name)
	assert.Empty(t, first.DependsOn)

	last, ok := cat.ByID(12)
	require.True(t, ok)
	assert.Equal(t, StepExecutiveSummary, last.Name)
	assert.Equal(t, []int{4, 6, 7, 10, 11}, last.DependsOn)

	// Every step except the base depends at least on the speaker mapping or
	// on steps that do.
	research, ok := cat.ByName(StepProductResearch)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 5, 7}, research.DependsOn)
}
