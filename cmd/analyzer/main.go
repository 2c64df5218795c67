// Package main is the service-call analysis CLI. It loads a recorded
// transcript, plans the requested analysis steps, and writes the assembled
// report document.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/output"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/repository/fs"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/repository/memory"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/repository/postgres"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/adapters/repository/sqlite"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/analysis"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/dto"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/runner"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/inference"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/transcript"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/config"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/serialization"
)

// Version information set during build.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		stepsFlag   = flag.String("steps", "", "comma-separated step ids to run (e.g. 4,7)")
		fromFlag    = flag.Int("from", -1, "run every step from this id onward")
		listFlag    = flag.Bool("list", false, "list the catalogue steps and exit")
		clearFlag   = flag.Bool("clear-cache", false, "remove all checkpoints and exit")
		storeFlag   = flag.String("store", "", "checkpoint store backend: fs, sqlite, postgres or memory")
		outputFlag  = flag.String("output", "", "output path for the analysis document")
		cacheFlag   = flag.String("cache-dir", "", "directory for filesystem checkpoints")
		versionFlag = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("analyzer %s (commit: %s)\n", Version, Commit)
		return
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cat, err := analysis.BuildCatalogue()
	if err != nil {
		logger.Fatalf("catalogue: %v", err)
	}

	if *listFlag {
		listSteps(cat)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *outputFlag != "" {
		cfg.Paths.Output = *outputFlag
	}
	if *cacheFlag != "" {
		cfg.Paths.CacheDir = *cacheFlag
	}
	if *storeFlag != "" {
		cfg.Store.Backend = *storeFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("checkpoint store: %v", err)
	}
	defer closeStore()

	if *clearFlag {
		if err := store.ClearAll(ctx); err != nil {
			logger.Fatalf("clear checkpoints: %v", err)
		}
		logger.Printf("cleared all checkpoints")
		return
	}

	req, err := buildRequest(*stepsFlag, *fromFlag)
	if err != nil {
		logger.Fatalf("request: %v", err)
	}

	tr, err := transcript.Load(cfg.Paths.TranscriptText, cfg.Paths.TranscriptJSON)
	if err != nil {
		logger.Fatalf("transcript: %v", err)
	}
	logger.Printf("loaded transcript with %d utterances", len(tr.Utterances))

	analyst := inference.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model,
		inference.WithTemperature(float32(cfg.OpenAI.Temperature)),
		inference.WithRetryPolicy(inference.RetryPolicy{
			MaxAttempts: cfg.OpenAI.MaxRetries,
			BaseDelay:   cfg.OpenAI.BaseDelay,
		}))
	researcher := inference.NewResearchClient(cfg.Research.APIKey, cfg.Research.Model,
		inference.WithResearchRetryPolicy(inference.RetryPolicy{
			MaxAttempts: cfg.Research.MaxRetries,
			BaseDelay:   cfg.Research.BaseDelay,
		}))

	caps := step.Capabilities{
		Analyst:    analyst,
		Researcher: researcher,
		Transcript: tr.Text,
	}

	writer := output.NewFileWriter(cfg.Paths.Output)
	r := runner.New(cat, store, caps, writer, runner.WithLogger(logger))

	resp, err := r.Run(ctx, req)
	if err != nil {
		logger.Printf("run failed: %v", err)
		os.Exit(1)
	}

	logger.Printf("run %s finished: %s in %s", resp.RunID, resp.Status, resp.Duration.Round(10*time.Millisecond))
	printSummary(logger, resp)
	logger.Printf("results written to %s", writer.Path())
}

// buildRequest maps the CLI flags onto a run request. Explicit steps win over
// a from bound; neither means a full run.
func buildRequest(stepsFlag string, from int) (*dto.RunRequest, error) {
	if stepsFlag != "" {
		if from >= 0 {
			return nil, fmt.Errorf("-steps and -from are mutually exclusive")
		}
		var ids []int
		for _, part := range strings.Split(stepsFlag, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid step id %q", part)
			}
			ids = append(ids, id)
		}
		return &dto.RunRequest{Mode: dto.ModeExplicit, Steps: ids}, nil
	}
	if from >= 0 {
		return &dto.RunRequest{Mode: dto.ModeFrom, From: from}, nil
	}
	return &dto.RunRequest{Mode: dto.ModeAll}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (checkpoint.Store, func(), error) {
	serializer := serialization.DefaultSerializer()
	noop := func() {}

	switch cfg.Store.Backend {
	case "fs":
		store, err := fs.NewStore(cfg.Paths.CacheDir, serializer)
		return store, noop, err
	case "memory":
		return memory.NewStore(serializer), noop, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath, serializer)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		store, err := postgres.Connect(ctx, cfg.Store.PostgresDSN, serializer)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func listSteps(cat *step.Catalogue) {
	fmt.Println("ID  STEP                  DEPENDS ON      LABEL")
	for _, def := range cat.Steps() {
		deps := "-"
		if len(def.DependsOn) > 0 {
			parts := make([]string, len(def.DependsOn))
			for i, d := range def.DependsOn {
				parts[i] = strconv.Itoa(d)
			}
			deps = strings.Join(parts, ",")
		}
		fmt.Printf("%-3d %-21s %-15s %s\n", def.ID, def.Name, deps, def.Label)
	}
}

// printSummary mirrors the key findings of the executive summary to the log.
func printSummary(logger *log.Logger, resp *dto.RunResponse) {
	for _, rec := range resp.Steps {
		logger.Printf("  step %2d %-21s %s", rec.ID, rec.Name, rec.Status)
	}

	summary, ok := resp.Document.Get(analysis.StepExecutiveSummary)
	if !ok {
		return
	}
	fields, ok := summary.(map[string]interface{})
	if !ok {
		return
	}
	if grade, ok := fields["overall_grade"].(string); ok {
		logger.Printf("  overall grade: %s", grade)
	}
	if outcome, ok := fields["call_outcome"].(string); ok {
		logger.Printf("  recommended product: %s", outcome)
	}
	if readiness, ok := fields["customer_readiness"].(string); ok {
		logger.Printf("  customer readiness: %s", readiness)
	}
}
