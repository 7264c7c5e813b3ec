package elab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLHierarchy is a declarative description of a gear hierarchy: a
// thin struct tree mirrored 1:1 onto the YAML document, then walked to
// drive Instantiate calls.
type YAMLHierarchy struct {
	Gears []YAMLGear `yaml:"gears"`
}

// YAMLGear names one gear instance, its positional argument sources (by
// the producing gear's "name.output" path) and literal parameter
// overrides.
type YAMLGear struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	Args       []string          `yaml:"args"`
	Params     map[string]string `yaml:"params"`
}

// LoadYAMLHierarchy reads and parses a hierarchy description file.
func LoadYAMLHierarchy(path string) (*YAMLHierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elab: failed to read hierarchy file: %w", err)
	}

	var h YAMLHierarchy
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("elab: failed to parse hierarchy YAML: %w", err)
	}
	return &h, nil
}

// ToParams converts a YAMLGear's string parameter map into elab.Param
// values, each treated as a template source (a literal integer still
// parses as a constant TemplateExpr, so this subsumes concrete values).
func (g YAMLGear) ToParams() map[string]Param {
	out := make(map[string]Param, len(g.Params))
	for k, v := range g.Params {
		out[k] = Param{Template: v}
	}
	return out
}
