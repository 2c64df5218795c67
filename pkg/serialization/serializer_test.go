package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerRoundTrip(t *testing.T) {
	s := DefaultSerializer()

	in := map[string]interface{}{
		"step":  "compliance_analysis",
		"grade": "B",
		"citations": []interface{}{
			map[string]interface{}{"quote": "thanks for calling"},
		},
	}

	data, err := s.Serialize(in)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var out map[string]interface{}
	err = s.Deserialize(data, &out)
	require.NoError(t, err)
	assert.Equal(t, "compliance_analysis", out["step"])
	assert.Equal(t, "B", out["grade"])
}

func TestSerializerCompressionVariants(t *testing.T) {
	payload := map[string]interface{}{"text": "customer asked about the quieter unit twice"}

	for _, compression := range []CompressionType{CompressionNone, CompressionGzip, CompressionZstd} {
		s := NewSerializer(Config{Codec: NewJSONCodec(), Compression: compression})

		data, err := s.Serialize(payload)
		require.NoError(t, err, string(compression))

		var out map[string]interface{}
		require.NoError(t, s.Deserialize(data, &out), string(compression))
		assert.Equal(t, payload["text"], out["text"], string(compression))
	}
}

func TestJSONCodecIsPlainJSON(t *testing.T) {
	s := NewSerializer(Config{Codec: NewJSONCodec(), Compression: CompressionNone})

	data, err := s.Serialize(map[string]interface{}{"executive_summary": "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"executive_summary":"ok"}`, string(data))
}
