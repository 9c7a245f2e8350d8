// Package config loads the repositories configuration file.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed schema.json
var schemaJSON string

// RepoConfig is one configured repository.
type RepoConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"baseurl"`
	GPGKey  string `yaml:"gpgkey,omitempty"`
}

// Config is the top-level configuration document:
//
//	repos:
//	  - name: base
//	    baseurl: https://example.com/os/x86_64
//	    gpgkey: https://example.com/RPM-GPG-KEY
type Config struct {
	Repos []RepoConfig `yaml:"repos"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML configuration data against the embedded schema
// and decodes it.
func Parse(raw []byte) (*Config, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func validate(raw []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(raw)
	if err != nil {
		return fmt.Errorf("converting config to JSON: %w", err)
	}
	schema, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}
	var doc any
	if err := sigsyaml.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
