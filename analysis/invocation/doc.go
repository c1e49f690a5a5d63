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
Package invocation implements the invocation counting analysis on top of the dataflow engine.

The analysis tracks, for each value of a procedure, how many times it may have been invoked
(zero, one, many or unknown) and which operations invoked it. A graph analyzed by this package contains
the operations Define, Param, Invoke, Havoc, Release and Call; graphs are usually produced by a frontend such as
the invokecheck package, which lowers Go functions.

Calls are analyzed according to the interprocedural options of the configuration. A contextual analysis starts the
callee from the values of the arguments at the call site and copies the values of the parameters back. A
non-contextual analysis starts the callee from scratch and adds the invocations of the callee to the ones of the
caller. When a callee is not analyzed, the values written by the call become unknown.

Findings reports the values that may be invoked more than once.
*/
package invocation
