package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStrict(t *testing.T) {
	outcome := DecodeStrict(`{"grade": "A"}`)
	require.Equal(t, StateParsed, outcome.State)
	value, ok := outcome.Value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A", value["grade"])

	outcome = DecodeStrict("Sure! Here is the JSON:")
	assert.Equal(t, StateNeedsFallback, outcome.State)
}

func TestExtractStructuredFencedBlock(t *testing.T) {
	raw := "```json\n{\"Speaker A\": \"Customer\", \"Speaker B\": \"Technician\"}\n```"

	v, err := ExtractStructured(raw)
	require.NoError(t, err)
	mapping, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Customer", mapping["Speaker A"])
}

func TestExtractStructuredEmbeddedInProse(t *testing.T) {
	raw := `Here is my analysis of the call.

{"objections": [{"quote": "that's a lot of money {or so}"}], "overall_sentiment": "mixed"}

Let me know if you need anything else.`

	v, err := ExtractStructured(raw)
	require.NoError(t, err)
	value, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "mixed", value["overall_sentiment"])
}

func TestExtractStructuredArray(t *testing.T) {
	raw := `The pricing mentions are: [{"amount": "$20,000"}, {"amount": "$15,000"}]`

	v, err := ExtractStructured(raw)
	require.NoError(t, err)
	items, ok := v.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestExtractStructuredFailsPermanently(t *testing.T) {
	_, err := ExtractStructured("no structure to be found here")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, ErrNoStructuredValue)
}

func TestExtractBlockRespectsStrings(t *testing.T) {
	raw := `prefix {"a": "brace } in string", "b": 1} suffix`
	assert.Equal(t, `{"a": "brace } in string", "b": 1}`, extractBlock(raw))
}
