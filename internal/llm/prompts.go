package llm

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the fixed prompt templates sent to the two endpoints.
type Prompts struct {
	Understanding  string `yaml:"understanding"`
	VisualAnalysis string `yaml:"visual_analysis"`
}

// LoadPrompts parses the embedded prompt templates.
func LoadPrompts() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if p.Understanding == "" || p.VisualAnalysis == "" {
		return nil, fmt.Errorf("prompts.yaml is missing a template")
	}
	return &p, nil
}
