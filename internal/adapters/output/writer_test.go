package output

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
)

func TestFileWriterWritesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analysis.json")
	w := NewFileWriter(path)

	doc := document.New()
	doc.Merge("overall_summary", map[string]interface{}{"text": "customer agreed to the quote"})
	doc.MarkFailed("product_research", "research service rejected the request")

	require.NoError(t, w.Write(context.Background(), doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Contains(t, out, "overall_summary")

	marker, ok := out["product_research"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, marker[document.FieldError])
}

func TestFileWriterReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	w := NewFileWriter(path)

	doc := document.New()
	doc.Merge("overall_summary", "first")
	require.NoError(t, w.Write(context.Background(), doc))

	doc.Merge("overall_summary", "second")
	require.NoError(t, w.Write(context.Background(), doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "second", out["overall_summary"])
}

func TestFileWriterLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(filepath.Join(dir, "analysis.json"))

	doc := document.New()
	doc.Merge("metadata", map[string]interface{}{"run_id": "test"})
	require.NoError(t, w.Write(context.Background(), doc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "analysis.json", entries[0].Name())
}
