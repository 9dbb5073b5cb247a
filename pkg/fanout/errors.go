// Copyright 2026 Google LLC
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

package fanout

import "fmt"

// PersistError reports a failure to write a batch script for one work unit.
type PersistError struct {
	Unit WorkUnit
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist script for %s: %v", e.Unit, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// SubmitError reports a failure of the external queue-submission command for
// one work unit.
type SubmitError struct {
	Unit WorkUnit
	Err  error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("failed to submit job for %s: %v", e.Unit, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
