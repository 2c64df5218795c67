// Package transcript loads recorded service-call transcripts and applies
// speaker relabeling.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Utterance is one diarized segment of the recording. Timestamps are
// milliseconds from the start of the call.
type Utterance struct {
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Transcript pairs the rendered text form with the diarized utterances.
type Transcript struct {
	Text       string
	Utterances []Utterance
}

// Load reads the text rendering and the diarized JSON form of a transcript.
// The JSON file carries an object with an "utterances" array.
func Load(txtPath, jsonPath string) (*Transcript, error) {
	text, err := os.ReadFile(txtPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript text: %w", err)
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript JSON: %w", err)
	}

	var parsed struct {
		Utterances []Utterance `json:"utterances"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse transcript JSON: %w", err)
	}

	return &Transcript{
		Text:       string(text),
		Utterances: parsed.Utterances,
	}, nil
}

// Relabel replaces generic speaker labels with the resolved roles, e.g.
// "Speaker A:" becomes "Customer:". Labels absent from the mapping pass
// through unchanged.
func Relabel(text string, mapping map[string]string) string {
	for oldLabel, newLabel := range mapping {
		text = strings.ReplaceAll(text, oldLabel+":", newLabel+":")
	}
	return text
}
