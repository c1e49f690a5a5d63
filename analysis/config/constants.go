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

import "errors"

const (
	// DefaultMaxCallDepth is the default maximum length of a chain of interprocedural analyses
	DefaultMaxCallDepth = 3

	// InterproceduralNone disables the analysis of callees
	InterproceduralNone = "none"
	// InterproceduralContextual analyzes callees from the state at the call site
	InterproceduralContextual = "contextual"
	// InterproceduralNonContextual analyzes callees from the empty state
	InterproceduralNonContextual = "non-contextual"
)

// ErrInvalidOption is returned when a config option has a value that cannot be used
var ErrInvalidOption = errors.New("invalid config option")
