package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boardsnap/boardsnap/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where evaluation runs are written
const DefaultDir = "evals"

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Prompt      string  `yaml:"prompt"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier       string  `yaml:"identifier"`
	ImagePath        string  `yaml:"imagepath"`
	ExpectedFEN      string  `yaml:"expectedfen"`
	ProviderResponse string  `yaml:"providerresponse,omitempty"`
	Strategy         string  `yaml:"strategy,omitempty"`
	ActualFEN        string  `yaml:"actualfen,omitempty"`
	Method           string  `yaml:"method,omitempty"`
	ExactMatch       bool    `yaml:"exactmatch"`
	SquareAccuracy   float64 `yaml:"squareaccuracy"`
	Error            string  `yaml:"error,omitempty"`
	ErrorKind        string  `yaml:"errorkind,omitempty"`
	DurationMillis   int64   `yaml:"durationms"`
}

// EvalSpec represents the complete evaluation run
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// Build converts evaluation results into their YAML form
func Build(cfg EvalConfig, results []metrics.EvaluationResult) *EvalSpec {
	spec := &EvalSpec{
		Config:  cfg,
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		evalResult := EvalResult{
			Identifier:       r.ID,
			ImagePath:        r.ImagePath,
			ExpectedFEN:      r.ExpectedFEN,
			ProviderResponse: r.PGN,
			Strategy:         r.Strategy,
			Error:            r.Error,
			ErrorKind:        r.ErrorKind,
			DurationMillis:   r.ProcessingTime.Milliseconds(),
		}

		if r.Comparison != nil {
			evalResult.ActualFEN = r.Comparison.Actual
			evalResult.Method = r.Comparison.Method
			evalResult.ExactMatch = r.Comparison.ExactMatch
			evalResult.SquareAccuracy = r.Comparison.SquareAccuracy
		}

		spec.Results = append(spec.Results, evalResult)
	}

	return spec
}

// SaveToYAML writes the run to dir/<timestamp>_<provider>.yaml and returns the file path
func SaveToYAML(dir string, cfg EvalConfig, results []metrics.EvaluationResult) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	data, err := yaml.Marshal(Build(cfg, results))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", cfg.Timestamp, cfg.Provider))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a run written by SaveToYAML
func LoadYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}

	return &spec, nil
}

// ToEvaluationResults converts a loaded run back into metrics input
func (s *EvalSpec) ToEvaluationResults() []metrics.EvaluationResult {
	out := make([]metrics.EvaluationResult, 0, len(s.Results))
	for _, r := range s.Results {
		result := metrics.EvaluationResult{
			ID:             r.Identifier,
			ImagePath:      r.ImagePath,
			ExpectedFEN:    r.ExpectedFEN,
			PGN:            r.ProviderResponse,
			Strategy:       r.Strategy,
			Error:          r.Error,
			ErrorKind:      r.ErrorKind,
			ProcessingTime: time.Duration(r.DurationMillis) * time.Millisecond,
		}
		if r.Error == "" {
			result.Comparison = &metrics.Comparison{
				Expected:        r.ExpectedFEN,
				Actual:          r.ActualFEN,
				Method:          r.Method,
				ExactMatch:      r.ExactMatch,
				PlacementMatch:  r.ExactMatch || r.Method == metrics.MethodPlacement,
				SideToMoveMatch: r.ExactMatch,
				SquareAccuracy:  r.SquareAccuracy,
				SquaresCorrect:  int(r.SquareAccuracy*64 + 0.5),
			}
		}
		out = append(out, result)
	}
	return out
}
