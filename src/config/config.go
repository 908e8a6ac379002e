// Package config loads optional compiler configuration from a YAML file.
// Command line flags take precedence over file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"alanc/src/util"
)

// Config mirrors the YAML configuration file.
type Config struct {
	Output     string `yaml:"output"`
	ModuleName string `yaml:"module_name"`
	Verbose    bool   `yaml:"verbose"`
	DumpAST    bool   `yaml:"dump_ast"`
}

// Load reads and decodes the configuration file at path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Apply folds the file values into an Options structure, leaving fields that
// were already set by command line flags untouched.
func (c Config) Apply(opt *util.Options) {
	if len(opt.Out) == 0 {
		opt.Out = c.Output
	}
	if len(opt.Module) == 0 {
		opt.Module = c.ModuleName
	}
	opt.Verbose = opt.Verbose || c.Verbose
	opt.DumpAST = opt.DumpAST || c.DumpAST
}
