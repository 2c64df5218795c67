package analysis

import (
	"fmt"
	"strings"
)

// System prompts for the chat-completion steps. Kept verbatim per step so a
// prompt change touches exactly one constant.
const (
	systemSpeakerMapping = `You are an expert at analyzing conversations to identify participants.
Determine which speaker is the customer and which is the technician/service provider.`

	systemLocation = `You are an expert at extracting location information from conversations.`

	systemPricing = `You are an expert at extracting pricing information from sales conversations.`

	systemSummary = `You are an expert service call analyst. Your task is to provide a
comprehensive summary of service call conversations, identifying key themes, participants,
and outcomes.`

	systemCompliance = `You are an expert service call compliance analyst. Your job is to analyze
service call transcripts and answer specific questions about compliance and performance.

CRITICAL: You must provide SPECIFIC CITATIONS from the transcript. Citations should be:
1. Direct quotes from the transcript (use exact timestamps in format [XXs - YYs])
2. Multiple citations if relevant to fully support your answer
3. Accurate and verifiable against the original transcript

GRADING: Assign a letter grade (A, B, C, D, or F) assessing the technician's performance:
- A (90-100%): Excellent - Exceeds expectations, professional, thorough
- B (80-89%): Good - Meets expectations with minor areas for improvement
- C (70-79%): Satisfactory - Adequate but needs improvement
- D (60-69%): Below expectations - Significant issues present
- F (0-59%): Failing - Critical failures, unprofessional

Format your response as JSON with:
{
  "answer": "Your detailed analysis here",
  "grade": "A, B, C, D, or F",
  "grade_explanation": "Brief explanation of why this grade was assigned",
  "citations": [
    {
      "timestamp": "[12.16s - 12.48s]",
      "speaker": "Customer or Technician",
      "quote": "Exact quote from transcript",
      "relevance": "Why this quote supports the answer"
    }
  ]
}`

	systemStructured = `You are an expert sales and service analyst. Analyze service calls to
extract structured information about the client's situation, products/services presented,
and client responses.`

	systemObjections = `You are an expert at analyzing sales conversations to identify customer objections and concerns.`

	systemProductInterest = `You are an expert at analyzing customer interest in products during sales calls.
Your job is to identify specific reasons why the customer is interested or not interested in each product,
using direct quotes from the conversation when possible.`

	systemAlternativeInterest = `You are an expert at analyzing customer needs and matching products to those needs.`

	systemCritique = `You are a senior service call quality analyst. Provide a comprehensive
critique of technician performance across compliance and sales.`

	systemComparison = `You are an expert HVAC consultant. Analyze all products (those mentioned by the
technician, with additional research, and alternatives suggested) and determine which is the best fit
for this specific customer.`
)

// complianceQuestion pairs a stable result key with the question asked of the
// model. Order matters: results render in battery order.
type complianceQuestion struct {
	Key      string
	Question string
}

var complianceQuestions = []complianceQuestion{
	{"introduction", "Did the technician properly greet the customer and introduce themselves/company?"},
	{"problem_diagnosis", "How did the technician inquire about and understand the customer's issue?"},
	{"solution_explanation", "Did the technician clearly explain the solution or service performed?"},
	{"upsell_attempts", "Note if and how the technician attempted to upsell additional services or products."},
	{"maintenance_plan", "Did the technician offer any maintenance plans or long-term service agreements?"},
	{"closing", "How did the technician conclude the call? Did they thank the customer and finish courteously?"},
	{"call_type", "Identify what kind of service call this is (for example, a repair call, maintenance visit, installation, etc.) based on the conversation."},
	{"sales_insights", "Highlight any sales signals or opportunities in the call. For instance, was the customer interested in additional services or did the technician miss cues for an upsell? Provide insights into what was done well or what was missed regarding sales opportunities."},
}

func speakerMappingPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze this service call transcript and determine which speaker is the customer
and which is the technician.

TRANSCRIPT:
%s

Return ONLY a JSON object in this exact format:
{
  "Speaker A": "Customer" or "Technician",
  "Speaker B": "Customer" or "Technician"
}`, truncate(transcriptText, 2000))
}

func locationPrompt(transcriptText string) string {
	return fmt.Sprintf(`Extract location information from this service call transcript:

TRANSCRIPT:
%s

Return JSON format:
{
  "street_address": "Full street address if mentioned, or null",
  "city": "City name if mentioned, or null",
  "state": "State if mentioned (e.g., 'California'), or null",
  "region": "Region/area if mentioned (e.g., 'Bay Area', 'Northern California'), or null",
  "climate_notes": "Any mentions of local climate/weather"
}`, truncate(transcriptText, 3000))
}

func pricingPrompt(transcriptText string) string {
	return fmt.Sprintf(`Extract ALL pricing mentions from this transcript. For each price mentioned, identify what it's for.

TRANSCRIPT:
%s

Return JSON array:
[
  {
    "amount": "Price (e.g., '$20,000' or '$15,000-$20,000')",
    "product_or_service": "What this price is for",
    "context": "Brief context around the mention"
  }
]`, transcriptText)
}

func summaryPrompt(transcriptText string) string {
	return fmt.Sprintf(`Please provide a comprehensive overall summary of this service call conversation.
Include:
- Who the participants are (their roles)
- What was the main purpose of the call
- What was discussed
- What was the outcome
- Any notable details

TRANSCRIPT:
%s

Please provide a well-structured summary (3-5 paragraphs).`, transcriptText)
}

func compliancePrompt(question, transcriptText string) string {
	return fmt.Sprintf(`Analyze this service call transcript and answer the following question with
detailed citations from the transcript:

QUESTION: %s

TRANSCRIPT:
%s

Provide your answer in JSON format with the answer and specific citations (timestamps, speaker, quotes).
Be thorough and include multiple citations if they support your analysis.`, question, transcriptText)
}

func structuredPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze this service call transcript and provide a structured analysis in JSON format:

1. Client's Situation: What was the problem or need? What were the relevant details about their current equipment/setup?

2. Products and Plans Presented: List each product/plan/option that was presented to the client with:
   - Name/description of the product/plan
   - Key features mentioned
   - Pricing information (if mentioned)
   - Any special terms (rebates, financing, etc.)

3. Client's Response: For each product/plan, what was the client's response? Were they interested,
   hesitant, declined, or agreed?

TRANSCRIPT:
%s

Return JSON in this exact format:
{
  "client_situation": {
    "problem_description": "...",
    "current_equipment": "...",
    "other_relevant_details": "..."
  },
  "products_and_plans": [
    {
      "name": "...",
      "description": "...",
      "features": ["...", "..."],
      "pricing": "...",
      "special_terms": ["...", "..."],
      "client_response": "...",
      "client_interest_level": "high/medium/low"
    }
  ],
  "overall_outcome": "..."
}`, transcriptText)
}

func objectionsPrompt(transcriptText string) string {
	return fmt.Sprintf(`Analyze this service call transcript and identify ALL customer objections, concerns, or hesitations.

TRANSCRIPT:
%s

Return JSON format:
{
  "objections": [
    {
      "timestamp": "[XXs - YYs]",
      "quote": "Customer's exact words",
      "concern_type": "price/quality/trust/timing/need/other",
      "severity": "high/medium/low",
      "addressed_by_technician": "yes/no/partially",
      "how_addressed": "How technician responded"
    }
  ],
  "pain_points": [
    {
      "pain_point": "Description of customer pain point",
      "quote": "Supporting quote if available"
    }
  ],
  "buying_signals": [
    {
      "signal": "Positive buying signal observed",
      "quote": "Supporting quote"
    }
  ],
  "overall_sentiment": "positive/neutral/negative/mixed",
  "readiness_to_buy": "high/medium/low with explanation"
}`, transcriptText)
}

func productInterestPrompt(transcriptText string, product map[string]interface{}) string {
	return fmt.Sprintf(`Analyze this service call transcript and explain WHY the client is interested or
not interested in the following product:

PRODUCT: %s
DESCRIPTION: %s
FEATURES: %s
PRICING: %s

TRANSCRIPT:
%s

Provide a detailed explanation with:
1. Direct quotes from the customer showing interest or hesitation
2. If no direct quotes exist, provide a hypothesis based on the conversation context
3. Be specific about what factors influenced their interest level

Return JSON format:
{
  "interest_explanation": "Detailed explanation here",
  "supporting_quotes": [
    {
      "timestamp": "[XXs - YYs]",
      "quote": "Direct quote",
      "indicates": "interest/disinterest/concern"
    }
  ],
  "hypothesis": "If no direct quotes, explain hypothesis here"
}`,
		stringField(product, "name", "Unknown Product"),
		stringField(product, "description", "N/A"),
		strings.Join(stringSlice(product, "features"), ", "),
		stringField(product, "pricing", "N/A"),
		transcriptText)
}

func productResearchPrompt(product map[string]interface{}, customerContext, locationStr string) string {
	return fmt.Sprintf(`Research this HVAC product for a California customer and provide additional information NOT mentioned in the sales call:

PRODUCT: %s
DESCRIPTION FROM CALL: %s
FEATURES MENTIONED: %s
PRICING MENTIONED: %s

CUSTOMER CONTEXT:
%s

Please provide:
1. Current market pricing in %s (include installation costs if available, with SOURCE URL)
2. Additional technical specifications not mentioned (SEER, EER, AFUE, capacity, with SOURCE URL)
3. Customer reviews or ratings (with SOURCE URL)
4. Energy efficiency certifications (ENERGY STAR, AHRI, California-specific certifications, with SOURCE URL)
5. Warranty details (with SOURCE URL)
6. California rebates or incentives available (TECH Clean California, utility rebates, with SOURCE URL)

Format your response as:
- [Information point] - Source: [URL]

Focus on factual, verifiable information with sources. Prioritize California-specific pricing and incentives.`,
		stringField(product, "name", "Unknown Product"),
		stringField(product, "description", "N/A"),
		strings.Join(stringSlice(product, "features"), ", "),
		stringField(product, "pricing", "Not specified"),
		customerContext, locationStr)
}

func alternativeResearchPrompt(customerContext, locationStr string) string {
	return fmt.Sprintf(`Based on this HVAC service call in %s, suggest 1-2 alternative heat pump or HVAC
system products that the technician did NOT mention but might be suitable for this customer.

CUSTOMER CONTEXT:
%s

For each alternative product (1-2 total), provide:
1. Product name and manufacturer (specific model if possible, with SOURCE URL)
2. Approximate pricing in %s including installation costs (with SOURCE URL)
3. Key features (noise levels in dB, efficiency ratings, special features, with SOURCE URL)
4. Noise level specifications in decibels (with SOURCE URL)
5. Energy efficiency ratings (SEER2, EER2, HSPF2, ENERGY STAR status, with SOURCE URL)
6. California rebates or incentives available (TECH Clean California, utility rebates, with SOURCE URL)
7. Why it would be suitable for THIS customer

Format with sources:
- [Information] - Source: [URL]

Provide 1-2 products with current, verifiable information and California-specific pricing.`,
		locationStr, customerContext, locationStr)
}

func alternativeInterestPrompt(transcriptText, alternativesText string) string {
	return fmt.Sprintf(`Based on this service call transcript, analyze why the client MIGHT be interested in
the following alternative products:

ALTERNATIVE PRODUCTS:
%s

TRANSCRIPT (Customer situation and preferences):
%s

For each alternative product mentioned above, explain:
1. Which customer needs/concerns it addresses
2. How it compares to what the customer is currently considering
3. Specific features that align with customer's stated preferences (quiet, efficient, etc.)
4. Potential objections or concerns the customer might have

Provide a clear, detailed analysis of potential interest.`, alternativesText, truncate(transcriptText, 3000))
}

func critiquePrompt(gradesJSON string, productCount int) string {
	return fmt.Sprintf(`Based on the following analysis, provide an OVERALL CRITIQUE of the technician's performance:

COMPLIANCE GRADES:
%s

NUMBER OF PRODUCTS PRESENTED: %d

Provide a comprehensive critique covering:
1. Overall compliance performance (summary of grades)
2. Strengths demonstrated
3. Areas needing improvement
4. Product presentation quality
5. Sales effectiveness
6. Customer rapport and professionalism
7. Key recommendations for improvement

Return JSON format:
{
  "overall_grade": "A/B/C/D/F based on compliance average",
  "compliance_summary": "Summary of compliance performance",
  "sales_summary": "Summary of sales/product presentation",
  "strengths": ["strength 1", "strength 2", ...],
  "areas_for_improvement": ["area 1", "area 2", ...],
  "key_recommendations": ["recommendation 1", "recommendation 2", ...],
  "overall_assessment": "Comprehensive final assessment"
}`, gradesJSON, productCount)
}

func comparisonPrompt(transcriptText, mentionedSummary, additionalResearch, alternativesInfo, alternativeInterest string) string {
	return fmt.Sprintf(`Analyze this service call and determine which HVAC product is the BEST fit for the customer.

CUSTOMER SITUATION (from transcript):
%s

PRODUCTS MENTIONED BY TECHNICIAN (with client interest analysis):
%s

ADDITIONAL RESEARCH ON MENTIONED PRODUCTS:
%s

ALTERNATIVE PRODUCTS FROM RESEARCH:
%s

ALTERNATIVE PRODUCT INTEREST ANALYSIS:
%s

CRITERIA TO EVALUATE:
1. Price range fit for customer's budget
2. Housing configuration compatibility
3. Noise level (customer works from home)
4. Efficiency and energy savings
5. California climate suitability
6. Customer's stated preferences
7. Long-term value

Return detailed JSON:
{
  "winner_product": "Product name",
  "winner_reasoning": "Detailed explanation of why this is the best choice",
  "comparison_factors": [
    "Factor 1: Analysis",
    "Factor 2: Analysis",
    ...
  ],
  "technician_critique": {
    "was_right_product": "yes/no/partially",
    "upsell_assessment": "maximum/moderate/minimal - explain",
    "customer_budget_flexibility": "Could customer go higher? Analysis based on conversation mood",
    "critique_bullets": [
      "Critique point 1",
      "Critique point 2",
      ...
    ],
    "overall_summary": "Summary of technician's product recommendations"
  }
}`, truncate(transcriptText, 3000), mentionedSummary, additionalResearch, alternativesInfo, alternativeInterest)
}
