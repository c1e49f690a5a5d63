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

package invocation

import "strconv"

// InvocationCount abstracts the number of times a value has been invoked. The counts form a chain:
// ZeroInvocations < OneInvocation < ManyInvocations < UnknownInvocations.
type InvocationCount int

const (
	// ZeroInvocations means the value has not been invoked on any path
	ZeroInvocations InvocationCount = iota
	// OneInvocation means the value has been invoked at most once
	OneInvocation
	// ManyInvocations means the value may have been invoked more than once
	ManyInvocations
	// UnknownInvocations means the number of invocations could not be tracked
	UnknownInvocations
)

func (c InvocationCount) String() string {
	switch c {
	case ZeroInvocations:
		return "zero"
	case OneInvocation:
		return "one"
	case ManyInvocations:
		return "many"
	case UnknownInvocations:
		return "unknown"
	default:
		return "count(" + strconv.Itoa(int(c)) + ")"
	}
}

// Join returns the largest of c and o
func (c InvocationCount) Join(o InvocationCount) InvocationCount {
	if c > o {
		return c
	}
	return o
}

// Meet returns the smallest of c and o
func (c InvocationCount) Meet(o InvocationCount) InvocationCount {
	if c < o {
		return c
	}
	return o
}

// Add returns the count of invocations of a value invoked c times, then o times
func (c InvocationCount) Add(o InvocationCount) InvocationCount {
	if c == UnknownInvocations || o == UnknownInvocations {
		return UnknownInvocations
	}
	if s := c + o; s < ManyInvocations {
		return s
	}
	return ManyInvocations
}

// AtLeastMany returns true when the value may have been invoked more than once
func (c InvocationCount) AtLeastMany() bool {
	return c >= ManyInvocations
}
