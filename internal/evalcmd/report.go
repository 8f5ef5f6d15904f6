package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/boardsnap/boardsnap/internal/eval/metrics"
	"github.com/boardsnap/boardsnap/internal/eval/results"
)

func executeReport(out io.Writer, resultsPath, format string) error {
	spec, err := results.LoadYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(out, spec)
	case "json":
		return printJSONReport(out, spec)
	case "csv":
		return printCSVReport(out, spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(out io.Writer, spec *results.EvalSpec) error {
	agg := metrics.AggregateEvaluationResults(spec.ToEvaluationResults(), spec.Config.Provider, spec.Config.Model)
	agg.SampleSize = spec.Config.SampleSize
	agg.WriteSummary(out)

	fmt.Fprintln(out, "\nDetailed Results:")
	fmt.Fprintln(out, "========================================")

	for i, result := range spec.Results {
		fmt.Fprintf(out, "\n[%d] Record ID: %s\n", i+1, result.Identifier)

		if result.Error != "" {
			fmt.Fprintf(out, "  Error (%s): %s\n", result.ErrorKind, result.Error)
			continue
		}

		fmt.Fprintf(out, "  Match: %s, square accuracy %.2f%%\n", result.Method, result.SquareAccuracy*100)
		if !result.ExactMatch {
			fmt.Fprintf(out, "    Expected:  %s\n", result.ExpectedFEN)
			fmt.Fprintf(out, "    Actual:    %s\n", truncate(result.ActualFEN, 80))
		}
	}

	return nil
}

func printJSONReport(out io.Writer, spec *results.EvalSpec) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec)
}

func printCSVReport(out io.Writer, spec *results.EvalSpec) error {
	writer := csv.NewWriter(out)

	header := []string{"ID", "Method", "Exact", "Square Accuracy", "Expected FEN", "Actual FEN", "Error Kind", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range spec.Results {
		row := []string{
			result.Identifier,
			result.Method,
			fmt.Sprintf("%t", result.ExactMatch),
			fmt.Sprintf("%.4f", result.SquareAccuracy),
			result.ExpectedFEN,
			result.ActualFEN,
			result.ErrorKind,
			result.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
