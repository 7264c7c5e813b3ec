package elab

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Registry holds the process-wide gearsim configuration keys as
// explicit fields of a value instead of process globals.
type Registry struct {
	GearMetaParams  map[string]bool   `yaml:"gear_meta_params"`
	GearExtraParams []string          `yaml:"gear_extra_params"`
	HDLInclude      []string          `yaml:"hdl_include"`
	HDLLang         string            `yaml:"hdl_lang"`
	HDLTopLang      string            `yaml:"hdl_top_lang"`
	HDLTop          string            `yaml:"hdl_top"`
	HDLGenDisambig  bool              `yaml:"hdlgen_disambig"`
	DebugTrace      bool              `yaml:"debug_trace"`
}

// GearExtraParamNames names the GearExtraParams registry key's default
// entries: {name, intfs, outnames, __base__}.
var GearExtraParamNames = []string{"name", "intfs", "outnames", "__base__"}

// DefaultRegistry returns a Registry with its documented defaults:
// GearMetaParams = {enablement: true}, hdl/lang = "sv".
func DefaultRegistry() *Registry {
	return &Registry{
		GearMetaParams:  map[string]bool{"enablement": true},
		GearExtraParams: append([]string{}, GearExtraParamNames...),
		HDLLang:         "sv",
	}
}

// LoadRegistryYAML loads registry overrides from a YAML document, the
// way config.go loads an ArrayConfig: defaults first, then unmarshal
// on top so a partial document only overrides the keys it mentions.
func LoadRegistryYAML(path string) (*Registry, error) {
	r := DefaultRegistry()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
