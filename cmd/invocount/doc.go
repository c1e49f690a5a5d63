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
Invocount reports the func values that may be invoked more than once on some path of the functions of your packages.

Usage:

	invocount [flags] <package path(s)>

The flags are:

	-config path             a path to the configuration file of the analysis

	-verbose=false           setting verbose mode, overrides config file options if set

	-with-test=false         load the tests of the packages

	-interprocedural kind    one of none, contextual or non-contextual; overrides the config file if set

	-max-depth n             maximum length of the chain of calls analyzed; overrides the config file if n >= 0

	-no-color=false          disable styled output

The exit status is 1 when some func value may be invoked more than once, and 2 when the analysis fails.
*/
package main
