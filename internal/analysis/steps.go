package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/inference"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/transcript"
)

// defaultSpeakerMapping covers the typical two-party service call when the
// model's mapping cannot be used.
func defaultSpeakerMapping() map[string]interface{} {
	return map[string]interface{}{
		"Speaker A": "Customer",
		"Speaker B": "Technician",
	}
}

// labeledTranscript applies the resolved speaker roles to the raw transcript.
// Callers run after the speaker mapping step, so the document carries it.
func labeledTranscript(doc document.Document, caps step.Capabilities) string {
	raw := asMap(doc[StepSpeakerMapping])
	mapping := make(map[string]string, len(raw))
	for label, role := range raw {
		if s, ok := role.(string); ok {
			mapping[label] = s
		}
	}
	return transcript.Relabel(caps.Transcript, mapping)
}

func computeSpeakerMapping(ctx context.Context, _ document.Document, caps step.Capabilities) (interface{}, error) {
	value, err := caps.Analyst.GenerateJSON(ctx, systemSpeakerMapping, speakerMappingPrompt(caps.Transcript))
	if err != nil {
		// An unparseable answer falls back to the typical call pattern
		// rather than blocking every downstream step.
		if inference.IsPermanent(err) {
			return defaultSpeakerMapping(), nil
		}
		return nil, err
	}

	mapping := asMap(value)
	if len(mapping) == 0 {
		return defaultSpeakerMapping(), nil
	}
	return mapping, nil
}

func computeLocationInfo(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	value, err := caps.Analyst.GenerateJSON(ctx, systemLocation, locationPrompt(labeledTranscript(doc, caps)))
	if err != nil {
		if inference.IsPermanent(err) {
			// State defaults to California; the research prompts assume it.
			return map[string]interface{}{
				"street_address": nil,
				"city":           nil,
				"state":          "California",
				"region":         nil,
				"climate_notes":  "",
			}, nil
		}
		return nil, err
	}
	return value, nil
}

func computePricingInfo(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	text := labeledTranscript(doc, caps)
	regexMatches := extractPriceMentions(text)

	structured := []interface{}{}
	value, err := caps.Analyst.GenerateJSON(ctx, systemPricing, pricingPrompt(text))
	switch {
	case err == nil:
		if s := asSlice(value); s != nil {
			structured = s
		}
	case inference.IsPermanent(err):
		// Keep the regex matches; the structured list is best-effort.
	default:
		return nil, err
	}

	return map[string]interface{}{
		"regex_matches":      regexMatches,
		"structured_pricing": structured,
	}, nil
}

func computeOverallSummary(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	return caps.Analyst.Generate(ctx, systemSummary, summaryPrompt(labeledTranscript(doc, caps)))
}

func computeComplianceAnalysis(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	text := labeledTranscript(doc, caps)
	results := make(map[string]interface{}, len(complianceQuestions))

	for _, q := range complianceQuestions {
		value, err := caps.Analyst.GenerateJSON(ctx, systemCompliance, compliancePrompt(q.Question, text))
		if err != nil {
			if inference.IsPermanent(err) {
				// One unanswerable question does not void the battery.
				results[q.Key] = map[string]interface{}{
					"question":          q.Question,
					"answer":            "",
					"grade":             "N/A",
					"grade_explanation": "response could not be parsed",
					"citations":         []interface{}{},
				}
				continue
			}
			return nil, err
		}

		parsed := asMap(value)
		citations := asSlice(parsed["citations"])
		if citations == nil {
			citations = []interface{}{}
		}
		results[q.Key] = map[string]interface{}{
			"question":          q.Question,
			"answer":            stringField(parsed, "answer", ""),
			"grade":             stringField(parsed, "grade", "N/A"),
			"grade_explanation": stringField(parsed, "grade_explanation", ""),
			"citations":         citations,
		}
	}

	return results, nil
}

func computeStructuredAnalysis(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	value, err := caps.Analyst.GenerateJSON(ctx, systemStructured, structuredPrompt(labeledTranscript(doc, caps)))
	if err != nil {
		return nil, err
	}
	parsed := asMap(value)
	if parsed == nil {
		return nil, inference.Permanent("chat", fmt.Errorf("structured analysis was not a JSON object"))
	}
	return parsed, nil
}

func computeCustomerObjections(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	value, err := caps.Analyst.GenerateJSON(ctx, systemObjections, objectionsPrompt(labeledTranscript(doc, caps)))
	if err != nil {
		return nil, err
	}
	parsed := asMap(value)
	if parsed == nil {
		return nil, inference.Permanent("chat", fmt.Errorf("objections analysis was not a JSON object"))
	}
	return parsed, nil
}

func computeEnhancedProducts(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	structured := asMap(doc[StepStructuredAnalysis])
	products := mapSlice(structured["products_and_plans"])
	if len(products) == 0 {
		// No products presented means the product steps degrade to no-ops.
		return []interface{}{}, nil
	}

	text := labeledTranscript(doc, caps)
	enhanced := make([]interface{}, 0, len(products))

	for _, product := range products {
		value, err := caps.Analyst.GenerateJSON(ctx, systemProductInterest, productInterestPrompt(text, product))

		interest := map[string]interface{}{
			"interest_explanation": "",
			"supporting_quotes":    []interface{}{},
			"hypothesis":           "",
		}
		switch {
		case err == nil:
			if parsed := asMap(value); parsed != nil {
				interest = parsed
			}
		case inference.IsPermanent(err):
			// Keep the product with an empty interest analysis.
		default:
			return nil, err
		}

		out := make(map[string]interface{}, len(product)+1)
		for k, v := range product {
			out[k] = v
		}
		out["interest_analysis"] = interest
		enhanced = append(enhanced, out)
	}

	return enhanced, nil
}

func computeProductResearch(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	products := mapSlice(doc[StepEnhancedProducts])
	if len(products) == 0 {
		return map[string]interface{}{}, nil
	}

	location := asMap(doc[StepLocationInfo])
	situation := asMap(asMap(doc[StepStructuredAnalysis])["client_situation"])
	contextStr := customerContext(situation, location)
	locationStr := locationString(location)

	unique := dedupeProducts(products)
	mentioned := make([]interface{}, 0, len(unique))
	for _, product := range unique {
		name := stringField(product, "name", "Unknown Product")

		res, err := caps.Researcher.Research(ctx, "", productResearchPrompt(product, contextStr, locationStr))
		switch {
		case err == nil:
			mentioned = append(mentioned, map[string]interface{}{
				"product_name":    name,
				"additional_info": res.Content,
				"citations":       res.Citations,
				"error":           false,
			})
		case inference.IsPermanent(err):
			mentioned = append(mentioned, map[string]interface{}{
				"product_name":    name,
				"additional_info": "",
				"citations":       []string{},
				"error":           true,
			})
		default:
			return nil, err
		}
	}

	result := map[string]interface{}{
		"mentioned_products_research": mentioned,
		"alternative_products_info":   "",
		"alternative_citations":       []string{},
		"error":                       false,
	}

	alt, err := caps.Researcher.Research(ctx, "", alternativeResearchPrompt(contextStr, locationStr))
	switch {
	case err == nil:
		result["alternative_products_info"] = alt.Content
		result["alternative_citations"] = alt.Citations
	case inference.IsPermanent(err):
		result["error"] = true
	default:
		return nil, err
	}

	return result, nil
}

func computeAlternativeInterest(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	research := asMap(doc[StepProductResearch])
	alternatives := stringField(research, "alternative_products_info", "")
	if alternatives == "" {
		return "", nil
	}
	return caps.Analyst.Generate(ctx, systemAlternativeInterest,
		alternativeInterestPrompt(labeledTranscript(doc, caps), alternatives))
}

func computeTechnicianCritique(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	compliance := asMap(doc[StepComplianceAnalysis])

	grades := make(map[string]interface{}, len(compliance))
	for key, raw := range compliance {
		entry := asMap(raw)
		if entry == nil {
			continue
		}
		grades[key] = map[string]interface{}{
			"grade":    stringField(entry, "grade", "N/A"),
			"question": stringField(entry, "question", ""),
		}
	}
	gradesJSON, err := json.MarshalIndent(grades, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render grades: %w", err)
	}

	productCount := len(mapSlice(doc[StepEnhancedProducts]))

	value, err := caps.Analyst.GenerateJSON(ctx, systemCritique, critiquePrompt(string(gradesJSON), productCount))
	if err != nil {
		return nil, err
	}
	parsed := asMap(value)
	if parsed == nil {
		return nil, inference.Permanent("chat", fmt.Errorf("critique was not a JSON object"))
	}
	return parsed, nil
}

func computeProductComparison(ctx context.Context, doc document.Document, caps step.Capabilities) (interface{}, error) {
	products := mapSlice(doc[StepEnhancedProducts])
	if len(products) == 0 {
		return map[string]interface{}{}, nil
	}

	mentionedSummary := ""
	for _, p := range products {
		interest := stringField(asMap(p["interest_analysis"]), "interest_explanation", "N/A")
		mentionedSummary += fmt.Sprintf("- %s: %s\n  Features: %s\n  Client Interest: %s\n",
			stringField(p, "name", "Unknown"),
			stringField(p, "pricing", "N/A"),
			strings.Join(stringSlice(p, "features"), ", "),
			truncate(interest, 200))
	}

	research := asMap(doc[StepProductResearch])
	additionalResearch := ""
	for _, raw := range asSlice(research["mentioned_products_research"]) {
		entry := asMap(raw)
		if entry == nil {
			continue
		}
		additionalResearch += fmt.Sprintf("ADDITIONAL RESEARCH FOR %s:\n%s\n\n",
			stringField(entry, "product_name", "Unknown"),
			stringField(entry, "additional_info", ""))
	}

	alternatives := stringField(research, "alternative_products_info", "None available")
	altInterest, _ := doc[StepAlternativeInterest].(string)
	if altInterest == "" {
		altInterest = "Not available"
	}

	value, err := caps.Analyst.GenerateJSON(ctx, systemComparison,
		comparisonPrompt(labeledTranscript(doc, caps), mentionedSummary, additionalResearch, alternatives, altInterest))
	if err != nil {
		return nil, err
	}
	parsed := asMap(value)
	if parsed == nil {
		return nil, inference.Permanent("chat", fmt.Errorf("comparison was not a JSON object"))
	}
	return parsed, nil
}

// computeExecutiveSummary aggregates prior step outputs locally; it never
// calls a model.
func computeExecutiveSummary(_ context.Context, doc document.Document, _ step.Capabilities) (interface{}, error) {
	compliance := asMap(doc[StepComplianceAnalysis])
	products := mapSlice(doc[StepEnhancedProducts])
	critique := asMap(doc[StepTechnicianCritique])
	objections := asMap(doc[StepCustomerObjections])
	winner := asMap(doc[StepProductComparison])

	distribution := make(map[string]int)
	var grades []string
	for _, raw := range compliance {
		grade := stringField(asMap(raw), "grade", "N/A")
		distribution[grade]++
		grades = append(grades, grade)
	}
	overallGrade := averageGrade(grades)

	readiness := stringField(objections, "readiness_to_buy", "unknown")
	winnerProduct := stringField(winner, "winner_product", "Unknown")

	recommendations := asSlice(critique["key_recommendations"])
	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}
	if recommendations == nil {
		recommendations = []interface{}{}
	}

	allObjections := mapSlice(objections["objections"])
	critical := make([]interface{}, 0)
	for _, obj := range allObjections {
		if stringField(obj, "severity", "") == "high" {
			critical = append(critical, obj)
		}
	}

	return map[string]interface{}{
		"call_outcome":             winnerProduct,
		"overall_grade":            overallGrade,
		"grade_distribution":       distribution,
		"total_products_presented": len(products),
		"customer_readiness":       readiness,
		"customer_sentiment":       stringField(objections, "overall_sentiment", "unknown"),
		"key_findings": []string{
			fmt.Sprintf("Technician received overall grade of %s", overallGrade),
			fmt.Sprintf("%d products presented to customer", len(products)),
			fmt.Sprintf("Customer readiness to buy: %s", readiness),
			fmt.Sprintf("Recommended product: %s", winnerProduct),
		},
		"top_recommendations":  recommendations,
		"critical_concerns":    critical,
		"buying_signals_count": len(asSlice(objections["buying_signals"])),
		"objections_count":     len(allObjections),
		"generated_at":         time.Now().Format(time.RFC3339),
	}, nil
}
