package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPriceMentions(t *testing.T) {
	text := "Technician: The full system runs $20,000, or $15,000 to $18,500.50 for the smaller unit."

	mentions := extractPriceMentions(text)
	assert.Len(t, mentions, 2)
	assert.Equal(t, "$20,000", mentions[0]["raw_text"])
	assert.Equal(t, "$15,000 to $18,500.50", mentions[1]["raw_text"])
}

func TestDedupeProductsCollapsesNameVariants(t *testing.T) {
	products := []map[string]interface{}{
		{"name": "Carrier Infinity 24"},
		{"name": "carrier infinity 24!"},
		{"name": "  Carrier   Infinity 24 "},
		{"name": "Bosch IDS 2.0"},
		{"name": ""},
	}

	unique := dedupeProducts(products)
	assert.Len(t, unique, 2)
	assert.Equal(t, "Carrier Infinity 24", unique[0]["name"])
	assert.Equal(t, "Bosch IDS 2.0", unique[1]["name"])
}

func TestAverageGrade(t *testing.T) {
	assert.Equal(t, "A", averageGrade([]string{"A", "A", "A"}))
	assert.Equal(t, "B", averageGrade([]string{"A", "B", "C"}))
	assert.Equal(t, "F", averageGrade([]string{"F", "F"}))
	assert.Equal(t, "N/A", averageGrade(nil))
	// Unrecognized grades are ignored rather than dragging the average.
	assert.Equal(t, "A", averageGrade([]string{"A", "N/A", "?"}))
}

func TestCustomerContext(t *testing.T) {
	situation := map[string]interface{}{
		"problem_description": "AC unit rattles and barely cools",
		"current_equipment":   "15 year old Goodman split system",
	}
	location := map[string]interface{}{
		"city":          "San Jose",
		"state":         "California",
		"climate_notes": "hot summers",
	}

	ctx := customerContext(situation, location)
	assert.Contains(t, ctx, "Location: San Jose, California")
	assert.Contains(t, ctx, "Problem: AC unit rattles")
	assert.Contains(t, ctx, "Current Equipment: 15 year old Goodman")
	assert.Contains(t, ctx, "Climate: hot summers")
}

func TestLocationStringDefaultsToCalifornia(t *testing.T) {
	assert.Equal(t, ", California", locationString(map[string]interface{}{}))
	assert.Equal(t, "Bay Area Oakland, California", locationString(map[string]interface{}{
		"region": "Bay Area",
		"city":   "Oakland",
	}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestStringFieldAndSlice(t *testing.T) {
	m := map[string]interface{}{
		"name":     "Bosch IDS",
		"features": []interface{}{"quiet", "variable speed", 42},
	}
	assert.Equal(t, "Bosch IDS", stringField(m, "name", "fallback"))
	assert.Equal(t, "fallback", stringField(m, "missing", "fallback"))
	assert.Equal(t, []string{"quiet", "variable speed"}, stringSlice(m, "features"))
}
