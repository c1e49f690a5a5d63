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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename, or [LoadFromBytes] to parse a configuration
held in memory.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The options are all under the top-level options key. The keys are defined by
the yaml tags of the fields of [Options].
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  interprocedural: contextual
	  max-depth: 2
	  assert-monotonic: true
	  pkg-filter: github.com/example/.*

A config that holds an unknown interprocedural kind, a negative max-depth or a log-level outside of [ErrLevel] and
[TraceLevel] is rejected by [Load].

The [LogGroup] returned by [NewLogGroup] is the logger passed to all the analyses.
*/
package config
