// Package analysis defines the service-call analysis catalogue: the ordered
// steps that turn a recorded call transcript into a comprehensive report.
//
// Step outputs land in the result document under the step's name. Dependencies
// always point at earlier steps, so a single ascending pass executes the whole
// catalogue.
package analysis

import "github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"

// Document keys owned by the catalogue steps.
const (
	StepSpeakerMapping      = "speaker_mapping"
	StepLocationInfo        = "location_info"
	StepPricingInfo         = "pricing_info"
	StepOverallSummary      = "overall_summary"
	StepComplianceAnalysis  = "compliance_analysis"
	StepStructuredAnalysis  = "structured_analysis"
	StepCustomerObjections  = "customer_objections"
	StepEnhancedProducts    = "enhanced_products"
	StepProductResearch     = "product_research"
	StepAlternativeInterest = "alternative_interest"
	StepTechnicianCritique  = "technician_critique"
	StepProductComparison   = "product_comparison"
	StepExecutiveSummary    = "executive_summary"
)

// BuildCatalogue constructs the full analysis catalogue.
func BuildCatalogue() (*step.Catalogue, error) {
	return step.NewCatalogue([]step.Definition{
		{ID: 0, Name: StepSpeakerMapping, Label: "Speaker Identification", Compute: computeSpeakerMapping},
		{ID: 1, Name: StepLocationInfo, Label: "Location & Context Extraction", DependsOn: []int{0}, Compute: computeLocationInfo},
		{ID: 2, Name: StepPricingInfo, Label: "Pricing Extraction", DependsOn: []int{0}, Compute: computePricingInfo},
		{ID: 3, Name: StepOverallSummary, Label: "Overall Summary", DependsOn: []int{0}, Compute: computeOverallSummary},
		{ID: 4, Name: StepComplianceAnalysis, Label: "Compliance Analysis", DependsOn: []int{0}, Compute: computeComplianceAnalysis},
		{ID: 5, Name: StepStructuredAnalysis, Label: "Structured Analysis", DependsOn: []int{0}, Compute: computeStructuredAnalysis},
		{ID: 6, Name: StepCustomerObjections, Label: "Customer Objections Analysis", DependsOn: []int{0}, Compute: computeCustomerObjections},
		{ID: 7, Name: StepEnhancedProducts, Label: "Product Interest Analysis", DependsOn: []int{0, 5}, Compute: computeEnhancedProducts},
		{ID: 8, Name: StepProductResearch, Label: "Product Research", DependsOn: []int{0, 1, 5, 7}, Compute: computeProductResearch},
		{ID: 9, Name: StepAlternativeInterest, Label: "Alternative Product Interest", DependsOn: []int{0, 8}, Compute: computeAlternativeInterest},
		{ID: 10, Name: StepTechnicianCritique, Label: "Technician Critique", DependsOn: []int{4, 7}, Compute: computeTechnicianCritique},
		{ID: 11, Name: StepProductComparison, Label: "Product Comparison", DependsOn: []int{0, 7, 8, 9}, Compute: computeProductComparison},
		{ID: 12, Name: StepExecutiveSummary, Label: "Executive Summary", DependsOn: []int{4, 6, 7, 10, 11}, Compute: computeExecutiveSummary},
	})
}
