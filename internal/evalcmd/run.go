package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/eval/dataset"
	"github.com/boardsnap/boardsnap/internal/eval/metrics"
	"github.com/boardsnap/boardsnap/internal/eval/results"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/position"
	"github.com/boardsnap/boardsnap/internal/providers"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs one image analysis
type Analyzer interface {
	Analyze(ctx context.Context, image images.Payload, cfg providers.Config) analysis.Result
}

// RunOptions configures an evaluation run
type RunOptions struct {
	DatasetPath string
	OutputDir   string
	OutputJSON  string
	Sample      int
	Concurrency int
	Timeout     time.Duration
}

// Runner evaluates a provider against a labelled dataset
type Runner struct {
	analyzer Analyzer
	fetcher  *images.Fetcher
}

// NewRunner creates a runner; a nil fetcher uses images.NewFetcher
func NewRunner(analyzer Analyzer, fetcher *images.Fetcher) *Runner {
	if fetcher == nil {
		fetcher = images.NewFetcher()
	}
	return &Runner{analyzer: analyzer, fetcher: fetcher}
}

// Run analyzes every sampled record and writes the YAML run file.
// It returns the aggregate and the path of the YAML file.
func (r *Runner) Run(ctx context.Context, cfg providers.Config, opts RunOptions) (*metrics.AggregateResults, string, error) {
	slog.Info("Starting evaluation run", "dataset", opts.DatasetPath, "provider", cfg.Provider, "model", cfg.Model)

	loader := dataset.NewLoader(opts.DatasetPath)
	records, err := loader.LoadSample(opts.Sample)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "records", len(records))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	evalResults := make([]metrics.EvaluationResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, record := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slog.Info("Processing record", "id", record.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(records)))
			evalResults[i] = r.processRecord(gctx, record, loader.BaseDir(), cfg, opts.Timeout)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("evaluation interrupted: %w", err)
	}

	agg := metrics.AggregateEvaluationResults(evalResults, string(cfg.Provider), cfg.Model)

	path, err := results.SaveToYAML(opts.OutputDir, results.EvalConfig{
		Provider:    string(cfg.Provider),
		Model:       cfg.Model,
		Prompt:      analysis.Prompt,
		Temperature: analysis.DefaultTemperature,
		DatasetPath: opts.DatasetPath,
		SampleSize:  len(records),
	}, evalResults)
	if err != nil {
		return agg, "", err
	}

	if opts.OutputJSON != "" {
		if err := agg.SaveToJSON(opts.OutputJSON); err != nil {
			return agg, path, err
		}
	}

	return agg, path, nil
}

func (r *Runner) processRecord(ctx context.Context, record dataset.Record, baseDir string, cfg providers.Config, timeout time.Duration) metrics.EvaluationResult {
	start := time.Now()
	source := record.ResolveImagePath(baseDir)
	result := metrics.EvaluationResult{
		ID:          record.ID,
		ImagePath:   source,
		ExpectedFEN: record.FEN,
	}
	defer func() {
		result.ProcessingTime = time.Since(start)
	}()

	if source == "" {
		result.Error = "no image available for record"
		return result
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := r.fetcher.Load(ctx, source)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load image: %v", err)
		return result
	}

	analyzed := r.analyzer.Analyze(ctx, payload, cfg)
	if !analyzed.Success {
		result.Error = analyzed.Error
		result.ErrorKind = string(analyzed.Kind)
		slog.Warn("Analysis failed", "id", record.ID, "kind", analyzed.Kind, "err", analyzed.Error)
		return result
	}

	result.PGN = analyzed.PGN
	result.Strategy = string(analyzed.Strategy)

	actual := analyzed.FEN
	if actual == "" {
		actual, _ = position.FindFEN(analyzed.PGN)
	}

	comparison, err := metrics.CompareFEN(record.FEN, actual)
	if err != nil {
		result.Error = fmt.Sprintf("failed to compare positions: %v", err)
		return result
	}
	result.Comparison = comparison

	return result
}
