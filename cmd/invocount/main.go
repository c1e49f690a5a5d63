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
	"context"
	"fmt"
	"go/token"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/awslabs/ar-flow/analysis/config"
	"github.com/awslabs/ar-flow/analysis/invokecheck"
	"github.com/awslabs/ar-flow/internal/formatutil"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

func main() {
	flags, err := NewFlags(os.Args[1:])
	if err != nil {
		errExit(err)
	}
	n, err := Run(flags)
	if err != nil {
		errExit(err)
	}
	if n > 0 {
		os.Exit(1)
	}
}

// Run runs invocount with flags and returns the number of reports.
func Run(flags Flags) (int, error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return 0, err
	}
	if flags.NoColor {
		formatutil.SetStyled(false)
	}
	logger := config.NewLogGroup(cfg)
	logger.Infof(formatutil.Faint.Sprint("Reading sources") + "\n")

	loadConfig := &packages.Config{
		Mode:  invokecheck.PkgLoadMode,
		Tests: flags.WithTest,
		Fset:  token.NewFileSet(),
	}
	lp, err := invokecheck.LoadProgram(loadConfig, "", ssa.InstantiateGenerics, flags.FlagSet.Args())
	if err != nil {
		return 0, fmt.Errorf("could not load program: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	reports, err := invokecheck.Run(ctx, logger, cfg, lp)
	if err != nil {
		return 0, fmt.Errorf("analysis failed: %w", err)
	}
	logger.Infof("Analysis took %3.4f s\n", time.Since(start).Seconds())

	printReports(os.Stdout, reports)
	if len(reports) == 0 {
		logger.Infof("RESULT:\n\t\t%s\n", formatutil.Green.Sprint("No func value invoked more than once ✓"))
	} else {
		logger.Errorf("RESULT:\n\t\t%s\n",
			formatutil.Red.Sprint(formatutil.Plural(len(reports), "func value")+" may be invoked more than once"))
	}
	return len(reports), nil
}

func printReports(w io.Writer, reports []invokecheck.Report) {
	for _, r := range reports {
		fmt.Fprintf(w, "%s %s in %s may be invoked %s times\n",
			formatutil.Yellow.Sprint("[INVOCATIONS]"),
			formatutil.Bold.Sprint(formatutil.Sanitize(r.Value)),
			formatutil.Sanitize(r.Function.String()),
			r.Count)
		for _, pos := range r.Invocations {
			fmt.Fprintf(w, "\t%s\n", formatutil.Cyan.Sprint(pos))
		}
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if hint := hintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
