package main

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// CLIResult is the structured envelope every command's --format json/yaml
// output uses.
type CLIResult struct {
	Command    string `json:"command" yaml:"command"`
	Results    any    `json:"results,omitempty" yaml:"results,omitempty"`
	TotalCount *int   `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// encodeJSON writes result to stdout as indented JSON.
func encodeJSON(result CLIResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// encodeYAML writes result to stdout as YAML.
func encodeYAML(result CLIResult) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(result)
}

// encodeResult writes result in whichever structured format --format
// selected (json or yaml); callers only reach this branch once the text
// case has already been handled separately.
func encodeResult(result CLIResult) error {
	if flagFormat == "yaml" {
		return encodeYAML(result)
	}
	return encodeJSON(result)
}
