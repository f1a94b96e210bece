package llm

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Operation names the remote procedure being served. The values match the
// callable names clients use.
type Operation string

const (
	OpGenerateProgram   Operation = "generateWorkoutProgram"
	OpRecommendExercise Operation = "getExerciseRecommendation"
	OpAnalyzeProgress   Operation = "analyzeProgression"
)

// Operations lists every operation in a stable order.
var Operations = []Operation{OpGenerateProgram, OpRecommendExercise, OpAnalyzeProgress}

type CompletionSettings struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

type Settings struct {
	Model      string                           `yaml:"model"`
	Operations map[Operation]CompletionSettings `yaml:"operations"`
}

// LoadSettings parses operations.yaml-shaped bytes and checks every
// operation has a complete entry.
func LoadSettings(raw []byte) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("parse completion settings: %w", err)
	}
	if s.Model == "" {
		return Settings{}, fmt.Errorf("completion settings: model not set")
	}
	for _, op := range Operations {
		cs, ok := s.Operations[op]
		if !ok {
			return Settings{}, fmt.Errorf("completion settings: %s missing", op)
		}
		if cs.MaxTokens <= 0 {
			return Settings{}, fmt.Errorf("completion settings: %s max_tokens must be positive", op)
		}
	}
	return s, nil
}

// DefaultSettings are the embedded operations.yaml values.
var DefaultSettings = mustLoadSettings(operationsYAML)

func mustLoadSettings(raw []byte) Settings {
	s, err := LoadSettings(raw)
	if err != nil {
		panic(err)
	}
	return s
}
