// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/advisor-engine/pkg/types"
)

// ResultFile is the on-disk representation of a completed analysis. The
// caller can save a run to a file and reload it later without re-running
// the loop.
type ResultFile struct {
	Question   string           `yaml:"question"`
	Config     ResultFileConfig `yaml:"config"`
	Insights   []types.Insight  `yaml:"insights"`
	Confidence float64          `yaml:"confidence"`
	Rendered   string           `yaml:"rendered"`
	Summary    ResultSummary    `yaml:"summary"`
	Log        []string         `yaml:"log,omitempty"`
}

// ResultFileConfig echoes the engine settings that produced the result.
type ResultFileConfig struct {
	MaxSubQuestions int    `yaml:"max_subquestions"`
	TopK            int    `yaml:"top_k"`
	Parallel        bool   `yaml:"parallel"`
	Provider        string `yaml:"provider,omitempty"`
	Model           string `yaml:"model,omitempty"`
}

// ResultSummary stores run statistics and a timestamp.
type ResultSummary struct {
	Metrics   string    `yaml:"metrics"`
	Errors    int       `yaml:"errors"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteResultFile saves a completed analysis to a YAML file.
func WriteResultFile(path string, cfg types.EngineConfig, res *types.AnalysisResult) error {
	rf := ResultFile{
		Question: res.Question,
		Config: ResultFileConfig{
			MaxSubQuestions: cfg.MaxSubQuestions,
			TopK:            cfg.Evidence.TopK,
			Parallel:        cfg.Parallel,
			Provider:        string(cfg.Completion.Provider),
			Model:           cfg.Completion.Model,
		},
		Insights:   res.Insights,
		Confidence: res.Confidence,
		Rendered:   res.Rendered,
		Summary: ResultSummary{
			Metrics:   res.Metrics.Summary(),
			Errors:    res.Metrics.Errors,
			Timestamp: time.Now(),
		},
		Log: res.Log,
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved analysis from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
