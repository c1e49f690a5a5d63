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
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-flow/analysis/config"
	"golang.org/x/tools/go/buildutil"
)

const usage = ` Report the func values that may be invoked more than once.
Usage:
  invocount [options] <package path(s)>
Examples:
  % invocount -config config.yaml package...
  % invocount -interprocedural non-contextual -max-depth 2 ./...
`

// Flags represents the parsed flags of invocount.
type Flags struct {
	FlagSet         *flag.FlagSet
	ConfigPath      string
	Verbose         bool
	WithTest        bool
	Interprocedural string
	MaxDepth        int
	NoColor         bool
}

// NewFlags returns the parsed flags of invocount with args.
// Prints usage along with flag docs as the --help message.
func NewFlags(args []string) (Flags, error) {
	cmd := flag.NewFlagSet("invocount", flag.ContinueOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	withTest := cmd.Bool("with-test", false, "load tests during analysis")
	interprocedural := cmd.String("interprocedural", "", "override the interprocedural kind of the config")
	maxDepth := cmd.Int("max-depth", -1, "override the maximum call chain length of the config")
	noColor := cmd.Bool("no-color", false, "disable styled output")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	setUsage(cmd, usage)
	if err := cmd.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command invocount with args %v: %v", args, err)
	}
	if cmd.NArg() == 0 {
		return Flags{}, fmt.Errorf("no package to analyze")
	}

	return Flags{
		FlagSet:         cmd,
		ConfigPath:      *configPath,
		Verbose:         *verbose,
		WithTest:        *withTest,
		Interprocedural: *interprocedural,
		MaxDepth:        *maxDepth,
		NoColor:         *noColor,
	}, nil
}

// setUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func setUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file of flags, or the default config without a file, and applies the overrides of
// the command line.
func LoadConfig(flags Flags) (*config.Config, error) {
	cfg := config.NewDefault()
	if flags.ConfigPath != "" {
		config.SetGlobalConfig(flags.ConfigPath)
		c, err := config.LoadGlobal()
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", flags.ConfigPath, err)
		}
		cfg = c
	}

	// Override config parameters with command-line parameters
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if flags.Interprocedural != "" {
		cfg.Interprocedural = flags.Interprocedural
	}
	if flags.MaxDepth >= 0 {
		cfg.MaxDepth = flags.MaxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
