package runner

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/repository/memory"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/dto"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/planner"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/inference"
)

// captureWriter records the document handed to it.
type captureWriter struct {
	doc    document.Document
	writes int
	err    error
}

func (w *captureWriter) Write(_ context.Context, doc document.Document) error {
	if w.err != nil {
		return w.err
	}
	w.doc = doc.Clone()
	w.writes++
	return nil
}

// callCounter tracks how many times each step's compute ran.
type callCounter struct {
	calls map[string]int
}

func newCallCounter() *callCounter {
	return &callCounter{calls: make(map[string]int)}
}

func (c *callCounter) compute(name string, value interface{}, err error) step.ComputeFunc {
	return func(_ context.Context, _ document.Document, _ step.Capabilities) (interface{}, error) {
		c.calls[name]++
		return value, err
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// buildChain creates a four step chain matching a miniature analysis run:
// 0 has no deps, 1 depends on 0, 2 on 1, 3 on 1 and 2.
func buildChain(t *testing.T, counter *callCounter, overrides map[string]step.ComputeFunc) *step.Catalogue {
	t.Helper()

	mk := func(name string, deps []int, id int) step.Definition {
		compute := counter.compute(name, map[string]interface{}{"step": name}, nil)
		if c, ok := overrides[name]; ok {
			compute = c
		}
		return step.Definition{ID: id, Name: name, Label: name, DependsOn: deps, Compute: compute}
	}

	cat, err := step.NewCatalogue([]step.Definition{
		mk("speaker_mapping", nil, 0),
		mk("overall_summary", []int{0}, 1),
		mk("customer_objections", []int{1}, 2),
		mk("executive_summary", []int{1, 2}, 3),
	})
	require.NoError(t, err)
	return cat
}

func TestRunAllExecutesEveryStepAndClearsCheckpoints(t *testing.T) {
	counter := newCallCounter()
	cat := buildChain(t, counter, nil)
	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeAll})
	require.NoError(t, err)

	assert.Equal(t, dto.RunStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Steps, 4)
	for _, rec := range resp.Steps {
		assert.Equal(t, dto.StepStatusSucceeded, rec.Status, rec.Name)
		assert.True(t, rec.Requested, rec.Name)
		assert.Equal(t, 1, counter.calls[rec.Name], rec.Name)
	}

	assert.True(t, resp.Document.Usable("executive_summary"))
	assert.True(t, resp.Document.Has(document.KeyMetadata))
	require.Equal(t, 1, writer.writes)
	assert.True(t, writer.doc.Usable("speaker_mapping"))

	// A fully successful from-scratch run leaves no checkpoints behind.
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRunExplicitReusesCheckpointsWithoutRecompute(t *testing.T) {
	counter := newCallCounter()
	cat := buildChain(t, counter, nil)
	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	// Seed checkpoints for steps 0..2 via a prefix run.
	_, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeExplicit, Steps: []int{0, 1, 2}})
	require.NoError(t, err)
	require.Equal(t, 1, counter.calls["customer_objections"])

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeExplicit, Steps: []int{3}})
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusCompleted, resp.Status)

	// Only step 3 recomputed; its dependencies came from checkpoints.
	assert.Equal(t, 1, counter.calls["speaker_mapping"])
	assert.Equal(t, 1, counter.calls["overall_summary"])
	assert.Equal(t, 1, counter.calls["customer_objections"])
	assert.Equal(t, 1, counter.calls["executive_summary"])

	byName := make(map[string]dto.StepResult)
	for _, rec := range resp.Steps {
		byName[rec.Name] = rec
	}
	assert.Equal(t, dto.StepStatusReused, byName["speaker_mapping"].Status)
	assert.Equal(t, dto.StepStatusReused, byName["overall_summary"].Status)
	assert.Equal(t, dto.StepStatusReused, byName["customer_objections"].Status)
	assert.Equal(t, dto.StepStatusSucceeded, byName["executive_summary"].Status)
	assert.False(t, byName["overall_summary"].Requested)
	assert.True(t, byName["executive_summary"].Requested)

	// Reused values are carried verbatim into the document.
	val, ok := resp.Document.Get("overall_summary")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"step": "overall_summary"}, val)

	// A partial run never clears checkpoints.
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestRunUnmetDependencyFailsBeforeExecuting(t *testing.T) {
	counter := newCallCounter()
	cat := buildChain(t, counter, nil)
	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	_, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeExplicit, Steps: []int{1}})
	require.Error(t, err)

	var unmet *planner.UnmetDependencyError
	require.True(t, errors.As(err, &unmet))
	assert.Equal(t, "speaker_mapping", unmet.MissingName)
	assert.Zero(t, counter.calls["overall_summary"])
}

func TestRunPermanentFailureCascadesAndSparesIndependents(t *testing.T) {
	counter := newCallCounter()
	failing := counter.compute("overall_summary", nil,
		inference.Permanent("chat", errors.New("response carried no structured value")))

	// Step 3 depends only on 0 here so it stays independent of the failure.
	mk := counter.compute
	cat, err := step.NewCatalogue([]step.Definition{
		{ID: 0, Name: "speaker_mapping", Label: "s0", Compute: mk("speaker_mapping", map[string]interface{}{"step": "speaker_mapping"}, nil)},
		{ID: 1, Name: "overall_summary", Label: "s1", DependsOn: []int{0}, Compute: failing},
		{ID: 2, Name: "customer_objections", Label: "s2", DependsOn: []int{1}, Compute: mk("customer_objections", map[string]interface{}{"step": "customer_objections"}, nil)},
		{ID: 3, Name: "pricing_info", Label: "s3", DependsOn: []int{0}, Compute: mk("pricing_info", map[string]interface{}{"step": "pricing_info"}, nil)},
	})
	require.NoError(t, err)

	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeAll})
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusPartial, resp.Status)

	byName := make(map[string]dto.StepResult)
	for _, rec := range resp.Steps {
		byName[rec.Name] = rec
	}
	assert.Equal(t, dto.StepStatusSucceeded, byName["speaker_mapping"].Status)
	assert.Equal(t, dto.StepStatusFailedPermanent, byName["overall_summary"].Status)
	assert.Equal(t, dto.StepStatusFailedDependent, byName["customer_objections"].Status)
	assert.Equal(t, dto.StepStatusSucceeded, byName["pricing_info"].Status)

	// The dependent step never computed; the independent one did.
	assert.Zero(t, counter.calls["customer_objections"])
	assert.Equal(t, 1, counter.calls["pricing_info"])

	// Both failures carry error markers in the document.
	assert.True(t, resp.Document.IsFailed("overall_summary"))
	assert.True(t, resp.Document.IsFailed("customer_objections"))
	assert.Contains(t, resp.Document.FailureReason("customer_objections"), "overall_summary")
	assert.True(t, resp.Document.Usable("pricing_info"))

	// Partial outcome: checkpoints survive for the succeeded steps.
	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, names, "speaker_mapping")
	assert.NotContains(t, names, "overall_summary")
}

func TestRunFatalErrorAbortsButWritesDocument(t *testing.T) {
	counter := newCallCounter()
	overrides := map[string]step.ComputeFunc{
		"overall_summary": counter.compute("overall_summary", nil, errors.New("store offline")),
	}
	cat := buildChain(t, counter, overrides)
	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overall_summary")

	require.NotNil(t, resp)
	assert.Equal(t, dto.RunStatusFailed, resp.Status)
	assert.NotEmpty(t, resp.Error)

	// Later steps never ran.
	assert.Zero(t, counter.calls["customer_objections"])
	assert.Zero(t, counter.calls["executive_summary"])

	// The partial document still reached the writer.
	require.Equal(t, 1, writer.writes)
	assert.True(t, writer.doc.Usable("speaker_mapping"))
}

func TestRunDocumentWriteFailureIsFatal(t *testing.T) {
	counter := newCallCounter()
	cat := buildChain(t, counter, nil)
	store := memory.NewStore(nil)
	writer := &captureWriter{err: errors.New("disk full")}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeAll})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, dto.RunStatusFailed, resp.Status)
}

func TestRunFromExecutesSuffix(t *testing.T) {
	counter := newCallCounter()
	cat := buildChain(t, counter, nil)
	store := memory.NewStore(nil)
	writer := &captureWriter{}
	r := New(cat, store, step.Capabilities{}, writer, WithLogger(testLogger()))

	_, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeExplicit, Steps: []int{0, 1}})
	require.NoError(t, err)

	resp, err := r.Run(context.Background(), &dto.RunRequest{Mode: dto.ModeFrom, From: 2})
	require.NoError(t, err)
	assert.Equal(t, dto.RunStatusCompleted, resp.Status)

	assert.Equal(t, 1, counter.calls["overall_summary"])
	assert.Equal(t, 1, counter.calls["customer_objections"])
	assert.Equal(t, 1, counter.calls["executive_summary"])
}
