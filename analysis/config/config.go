// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the invocation analyses.
// If some field is not defined in the config file, it will be set to its default value by Load.
// Private fields are not populated from a yaml file, but computed after initialization.
type Config struct {
	Options

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp
}

// Options holds the settings of the engine and of the drivers built on top of it.
type Options struct {
	// PkgFilter restricts the set of functions analyzed to the ones whose package path matches the filter.
	PkgFilter string `yaml:"pkg-filter"`

	// Interprocedural is one of "none", "contextual" or "non-contextual". With "none", calls are never analyzed and
	// their effects on tracked values are unknown. With "contextual", a callee is analyzed starting from the state at
	// the call site. With "non-contextual", a callee is analyzed once from the empty state and its summary is reused.
	Interprocedural string `yaml:"interprocedural"`

	// MaxDepth sets a limit for the length of the chain of calls analyzed interprocedurally.
	// When the option is absent, DefaultMaxCallDepth is used. A MaxDepth of 0 never analyzes callees.
	MaxDepth int `yaml:"max-depth"`

	// AssertMonotonic turns any non-monotonic update of an abstract value into an error. When false, the offending
	// values are set to unknown and the analysis continues.
	AssertMonotonic bool `yaml:"assert-monotonic"`

	// PredicatedGlobalState enables the meet of the predecessor states at join blocks dominated by a single
	// branching block, instead of the join. This yields results that hold on every path to the join.
	PredicatedGlobalState bool `yaml:"predicated-global-state"`

	// SkipRecursiveCalls disables the interprocedural analysis of calls between functions of the same recursive
	// component of the call graph.
	SkipRecursiveCalls bool `yaml:"skip-recursive-calls"`

	// Parallelism is the number of functions analyzed concurrently. Values <= 0 mean one per CPU.
	Parallelism int `yaml:"parallelism"`

	// MaxAlarms sets a limit for the number of alarms reported by an analysis.  If MaxAlarms > 0, then at most
	// MaxAlarms will be reported. Otherwise, if MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// SilenceWarn suppresses the warnings of the log group
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			PkgFilter:             "",
			Interprocedural:       InterproceduralContextual,
			MaxDepth:              DefaultMaxCallDepth,
			AssertMonotonic:       false,
			PredicatedGlobalState: false,
			SkipRecursiveCalls:    false,
			Parallelism:           0,
			MaxAlarms:             0,
			LogLevel:              int(InfoLevel),
			SilenceWarn:           false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := LoadFromBytes(b)
	if err != nil {
		return nil, err
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// LoadFromBytes parses a yaml configuration and validates it.
func LoadFromBytes(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.Interprocedural == "" {
		cfg.Interprocedural = InterproceduralContextual
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if some option has a value that cannot be interpreted.
func (c Config) Validate() error {
	switch c.Interprocedural {
	case InterproceduralNone, InterproceduralContextual, InterproceduralNonContextual:
	default:
		return fmt.Errorf("%w: unknown interprocedural kind %q", ErrInvalidOption, c.Interprocedural)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: negative max-depth %d", ErrInvalidOption, c.MaxDepth)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("%w: log-level %d not in [%d, %d]", ErrInvalidOption, c.LogLevel, ErrLevel, TraceLevel)
	}
	return nil
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}
