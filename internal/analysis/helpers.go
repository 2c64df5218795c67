package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Matches single amounts and ranges such as "$15,000-$20,000" or
	// "$15,000 to $20,000".
	pricePattern = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?(?:\s*(?:to|-)\s*\$[\d,]+(?:\.\d{2})?)?`)

	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// truncate caps s at n bytes. Prompts bound transcript excerpts this way to
// keep token usage predictable.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// asMap converts a decoded JSON value to a string-keyed map, or nil.
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asSlice converts a decoded JSON value to a slice, or nil.
func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// mapSlice extracts the map-typed elements of a decoded JSON array.
func mapSlice(v interface{}) []map[string]interface{} {
	raw := asSlice(v)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m := asMap(item); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// stringField reads a string field from a decoded map, with a fallback.
func stringField(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

// stringSlice reads a field holding an array of strings from a decoded map.
func stringSlice(m map[string]interface{}, key string) []string {
	raw := asSlice(m[key])
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// normalizeProductName collapses a product name so minor punctuation and
// spacing differences do not produce duplicate research queries.
func normalizeProductName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = nonWordPattern.ReplaceAllString(normalized, "")
	normalized = whitespacePattern.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// dedupeProducts drops products whose normalized names repeat, keeping the
// first occurrence.
func dedupeProducts(products []map[string]interface{}) []map[string]interface{} {
	seen := make(map[string]bool, len(products))
	unique := make([]map[string]interface{}, 0, len(products))
	for _, product := range products {
		key := normalizeProductName(stringField(product, "name", ""))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, product)
	}
	return unique
}

// locationString renders the extracted location as "region city, state" with
// California as the default state.
func locationString(location map[string]interface{}) string {
	region := stringField(location, "region", "")
	city := stringField(location, "city", "")
	state := stringField(location, "state", "California")
	return strings.TrimSpace(fmt.Sprintf("%s %s, %s", region, city, state))
}

// customerContext assembles the situation summary handed to research prompts.
func customerContext(clientSituation, location map[string]interface{}) string {
	parts := []string{"Location: " + locationString(location)}

	if v := stringField(clientSituation, "problem_description", ""); v != "" {
		parts = append(parts, "Problem: "+v)
	}
	if v := stringField(clientSituation, "current_equipment", ""); v != "" {
		parts = append(parts, "Current Equipment: "+v)
	}
	if v := stringField(clientSituation, "other_relevant_details", ""); v != "" {
		parts = append(parts, "Other Details: "+v)
	}
	if v := stringField(location, "climate_notes", ""); v != "" {
		parts = append(parts, "Climate: "+v)
	}

	return strings.Join(parts, "\n- ")
}

// Letter grades map onto the midpoint of their percentage bands.
var gradeValues = map[string]float64{
	"A": 90, "B": 80, "C": 70, "D": 60, "F": 50,
}

// averageGrade collapses a set of letter grades into one. Unrecognized grades
// are ignored; an empty set yields "N/A".
func averageGrade(grades []string) string {
	var total float64
	var count int
	for _, g := range grades {
		if v, ok := gradeValues[g]; ok {
			total += v
			count++
		}
	}
	if count == 0 {
		return "N/A"
	}

	avg := total / float64(count)
	switch {
	case avg >= 90:
		return "A"
	case avg >= 80:
		return "B"
	case avg >= 70:
		return "C"
	case avg >= 60:
		return "D"
	default:
		return "F"
	}
}

// extractPriceMentions finds raw dollar-amount mentions with their byte
// offsets in the transcript.
func extractPriceMentions(transcriptText string) []map[string]interface{} {
	matches := pricePattern.FindAllStringIndex(transcriptText, -1)
	mentions := make([]map[string]interface{}, 0, len(matches))
	for _, loc := range matches {
		mentions = append(mentions, map[string]interface{}{
			"raw_text": transcriptText[loc[0]:loc[1]],
			"position": loc[0],
		})
	}
	return mentions
}
