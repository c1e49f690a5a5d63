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
Package invokecheck finds the func values of a Go program that may be invoked more than once.

The program is loaded with LoadProgram and every function selected by the configuration is lowered to a graph of
the invocation analysis (see Lower):
  - parameters and local values of func type are tracked, starting with zero invocations,
  - a call through a func value is an invocation of that value,
  - a static call to another selected function is analyzed interprocedurally, the func values passed as arguments
    being bound to the parameters of the callee,
  - a func value that is stored, captured, sent or converted to an interface escapes, and its invocations become
    unknown.

Run analyzes the functions in parallel and returns a Report for every value whose invocation count is many. Values
with unknown invocations are not reported. A comment //invocount:ignore on the line of an invocation removes it from
the reports.
*/
package invokecheck
