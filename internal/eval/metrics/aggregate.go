package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// EvaluationResult represents the result for a single dataset record
type EvaluationResult struct {
	ID             string        `json:"id"`
	ImagePath      string        `json:"image_path"`
	ExpectedFEN    string        `json:"expected_fen"`
	PGN            string        `json:"pgn,omitempty"`
	Strategy       string        `json:"strategy,omitempty"`
	Comparison     *Comparison   `json:"comparison,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"` // If analysis failed
	ErrorKind      string        `json:"error_kind,omitempty"`
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	ExactMatches     int            `json:"exact_matches"`
	PlacementMatches int            `json:"placement_matches"`
	SideToMoveHits   int            `json:"side_to_move_hits"`
	InvalidFENs      int            `json:"invalid_fens"`
	MissingFENs      int            `json:"missing_fens"`
	Strategies       map[string]int `json:"strategies"`
	Failures         map[string]int `json:"failures"`

	// Mean per-square accuracy over successful analyses
	SquareAccuracy float64 `json:"square_accuracy"`
	ExactAccuracy  float64 `json:"exact_accuracy"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []EvaluationResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	SampleSize     int       `json:"sample_size"`
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
		Strategies:     map[string]int{},
		Failures:       map[string]int{},
	}

	totalSquares := 0.0
	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" {
			agg.FailureCount++
			kind := result.ErrorKind
			if kind == "" {
				kind = "unknown"
			}
			agg.Failures[kind]++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime
		if result.Strategy != "" {
			agg.Strategies[result.Strategy]++
		}

		c := result.Comparison
		if c == nil {
			continue
		}

		totalSquares += c.SquareAccuracy
		if c.ExactMatch {
			agg.ExactMatches++
		}
		if c.PlacementMatch {
			agg.PlacementMatches++
		}
		if c.SideToMoveMatch {
			agg.SideToMoveHits++
		}
		switch c.Method {
		case MethodInvalid:
			agg.InvalidFENs++
		case MethodMissing:
			agg.MissingFENs++
		}
	}

	if agg.SuccessCount > 0 {
		agg.SquareAccuracy = totalSquares / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}
	if agg.TotalRecords > 0 {
		agg.ExactAccuracy = float64(agg.ExactMatches) / float64(agg.TotalRecords)
	}

	agg.TotalProcessingTime = totalDuration

	return agg
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary prints a human-readable summary of the evaluation to stdout
func (a *AggregateResults) PrintSummary() {
	a.WriteSummary(os.Stdout)
}

// WriteSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "BOARDSNAP EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintf(w, "Sample Size: %d records\n", a.SampleSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	for kind, n := range a.Failures {
		fmt.Fprintf(w, "  %s: %d\n", kind, n)
	}
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "POSITION ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Exact Matches: %d (%.1f%%)\n", a.ExactMatches, percent(a.ExactMatches, a.TotalRecords))
	fmt.Fprintf(w, "Placement Matches: %d (%.1f%%)\n", a.PlacementMatches, percent(a.PlacementMatches, a.TotalRecords))
	fmt.Fprintf(w, "Side To Move Correct: %d\n", a.SideToMoveHits)
	fmt.Fprintf(w, "Invalid FENs: %d\n", a.InvalidFENs)
	fmt.Fprintf(w, "Missing FENs: %d\n", a.MissingFENs)
	fmt.Fprintf(w, "Square Accuracy: %.2f%% (%.3f)\n", a.SquareAccuracy*100, a.SquareAccuracy)
	if len(a.Strategies) > 0 {
		fmt.Fprintln(w, "\nExtraction Strategies:")
		for strategy, n := range a.Strategies {
			fmt.Fprintf(w, "  %s: %d\n", strategy, n)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
