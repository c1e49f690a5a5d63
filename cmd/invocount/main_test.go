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

package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-flow/analysis/config"
)

var basic = filepath.Join("..", "..", "testdata", "src", "invocount", "basic")

func TestNewFlags(t *testing.T) {
	flags, err := NewFlags([]string{"-interprocedural", "none", "-no-color", "main.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flags.Interprocedural != "none" || !flags.NoColor || flags.MaxDepth != -1 || flags.ConfigPath != "" {
		t.Errorf("wrong flags: %+v", flags)
	}
	if args := flags.FlagSet.Args(); len(args) != 1 || args[0] != "main.go" {
		t.Errorf("wrong arguments: %v", args)
	}
	if _, err := NewFlags([]string{"-verbose"}); err == nil {
		t.Errorf("flags without package should be rejected")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(Flags{MaxDepth: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Interprocedural != config.InterproceduralContextual || cfg.MaxDepth != config.DefaultMaxCallDepth {
		t.Errorf("expected the default config, got %+v", cfg.Options)
	}

	cfg, err = LoadConfig(Flags{
		ConfigPath:      filepath.Join(basic, "config.yaml"),
		Verbose:         true,
		Interprocedural: config.InterproceduralNonContextual,
		MaxDepth:        0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Interprocedural != config.InterproceduralNonContextual || cfg.MaxDepth != 0 ||
		cfg.LogLevel != int(config.DebugLevel) || !cfg.PredicatedGlobalState {
		t.Errorf("overrides not applied: %+v", cfg.Options)
	}

	_, err = LoadConfig(Flags{Interprocedural: "sometimes", MaxDepth: -1})
	if !errors.Is(err, config.ErrInvalidOption) {
		t.Errorf("expected an invalid option error, got %v", err)
	}
	if hint := hintForErrorMessage(err.Error()); !strings.Contains(hint, "non-contextual") {
		t.Errorf("missing hint for %v", err)
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program:\n -: named files must be .go files: -v"
	if hint := hintForErrorMessage(errorMsg); !strings.Contains(hint, "all command line flags should be before the path") {
		t.Errorf("incorrect hint %q", hint)
	}
	if hint := hintForErrorMessage("analysis failed: canceled"); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}

func TestRun(t *testing.T) {
	flags, err := NewFlags([]string{"-config", filepath.Join(basic, "config.yaml"), "-no-color",
		filepath.Join(basic, "main.go")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := Run(flags)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	// twice, retry and notify
	if n != 3 {
		t.Errorf("expected 3 reports, got %d", n)
	}
}
