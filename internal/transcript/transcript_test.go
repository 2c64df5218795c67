package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsBothForms(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "transcription.txt")
	jsonPath := filepath.Join(dir, "transcription.json")

	require.NoError(t, os.WriteFile(txtPath, []byte("Speaker A: Hello.\nSpeaker B: Hi there.\n"), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"utterances": [
			{"speaker": "A", "text": "Hello.", "start": 120, "end": 840},
			{"speaker": "B", "text": "Hi there.", "start": 900, "end": 1500}
		]
	}`), 0o644))

	tr, err := Load(txtPath, jsonPath)
	require.NoError(t, err)
	assert.Contains(t, tr.Text, "Speaker A: Hello.")
	require.Len(t, tr.Utterances, 2)
	assert.Equal(t, "A", tr.Utterances[0].Speaker)
	assert.Equal(t, 840.0, tr.Utterances[0].End)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "transcription.txt")
	jsonPath := filepath.Join(dir, "transcription.json")

	require.NoError(t, os.WriteFile(txtPath, []byte("Speaker A: Hello."), 0o644))
	require.NoError(t, os.WriteFile(jsonPath, []byte("not json"), 0o644))

	_, err := Load(txtPath, jsonPath)
	assert.Error(t, err)
}

func TestRelabelReplacesSpeakerLabels(t *testing.T) {
	text := "Speaker A: My AC is rattling.\nSpeaker B: Let me take a look.\nSpeaker A: Thanks."
	mapping := map[string]string{
		"Speaker A": "Customer",
		"Speaker B": "Technician",
	}

	out := Relabel(text, mapping)
	assert.Equal(t, "Customer: My AC is rattling.\nTechnician: Let me take a look.\nCustomer: Thanks.", out)
}

func TestRelabelLeavesUnmappedLabelsAlone(t *testing.T) {
	text := "Speaker C: Who is this?"
	out := Relabel(text, map[string]string{"Speaker A": "Customer"})
	assert.Equal(t, text, out)
}
