// Package step provides the analysis step catalogue: the static, ordered set
// of steps the pipeline can execute and the capabilities their compute
// functions consume.
package step

import (
	"context"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
)

// AnswerGenerator produces model answers for analysis prompts. Implementations
// own retry/backoff; compute functions treat them as black boxes.
type AnswerGenerator interface {
	// Generate returns the raw text answer for a prompt.
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)

	// GenerateJSON returns the structured value embedded in the model's
	// answer, tolerating prose and code-fence wrapping around it.
	GenerateJSON(ctx context.Context, systemPrompt, prompt string) (interface{}, error)
}

// ResearchResult is the outcome of one web-research query.
type ResearchResult struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
}

// ResearchGenerator answers research prompts with sourced content.
type ResearchGenerator interface {
	Research(ctx context.Context, systemPrompt, prompt string) (*ResearchResult, error)
}

// Capabilities are the injected externals available to a compute function.
// Steps never reach for ambient state; everything arrives here.
type Capabilities struct {
	Analyst    AnswerGenerator
	Researcher ResearchGenerator

	// Transcript is the raw transcript text of the call under analysis.
	Transcript string
}

// ComputeFunc produces one step's output from the document subset declared by
// the step's dependencies. Re-running a compute with the same inputs is an
// expected operation; answers must be functionally equivalent, not
// byte-identical.
type ComputeFunc func(ctx context.Context, doc document.Document, caps Capabilities) (interface{}, error)

// Definition is one immutable catalogue entry.
type Definition struct {
	ID        int
	Name      string // document key for this step's output
	Label     string
	DependsOn []int // all strictly smaller than ID
	Compute   ComputeFunc
}
