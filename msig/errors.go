// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package msig

import "fmt"

// TooManyBatchesError is returned when a run needs more proposal names than
// the naming template can provide
type TooManyBatchesError struct {
	Batches  int
	Capacity int
}

func (e *TooManyBatchesError) Error() string {
	return fmt.Sprintf(
		"too many batches: %d requested, proposal name template supports %d",
		e.Batches,
		e.Capacity,
	)
}

// ApproverLookupError wraps a failure to resolve the approvers of a proposal
type ApproverLookupError struct {
	Batch   int
	Account string
	Err     error
}

func (e *ApproverLookupError) Error() string {
	return fmt.Sprintf(
		"batch %d: looking up approvers of %s: %v",
		e.Batch,
		e.Account,
		e.Err,
	)
}

func (e *ApproverLookupError) Unwrap() error {
	return e.Err
}

// SerializationError wraps a failure to pack a batch's actions
type SerializationError struct {
	Batch int
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("batch %d: serializing actions: %v", e.Batch, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
