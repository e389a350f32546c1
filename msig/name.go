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

import (
	"errors"
	"fmt"

	"github.com/seedsproject/seedsdist/action"
)

const (
	DefaultProposalPrefix = "redist"
	// DefaultNameTemplate supplies one character per batch
	DefaultNameTemplate = "abcdefghijklmnopqr"
)

// Namer derives proposal names from the batch number. The name of batch N is
// the prefix followed by the Nth character of the template, so the same batch
// always gets the same name.
type Namer struct {
	Prefix   string
	Template string
}

func DefaultNamer() Namer {
	return Namer{Prefix: DefaultProposalPrefix, Template: DefaultNameTemplate}
}

// Capacity is the number of batches the template can name
func (n Namer) Capacity() int {
	return len(n.Template)
}

// Validate checks that every name the namer can produce is a valid chain name
func (n Namer) Validate() error {
	if n.Template == "" {
		return errors.New("proposal name template is empty")
	}
	for i := range n.Template {
		name := n.Prefix + n.Template[i:i+1]
		if !action.ValidName(name) {
			return fmt.Errorf("invalid proposal name %q", name)
		}
	}
	return nil
}

// Check fails when batchCount exceeds the template capacity
func (n Namer) Check(batchCount int) error {
	if batchCount > n.Capacity() {
		return &TooManyBatchesError{Batches: batchCount, Capacity: n.Capacity()}
	}
	return nil
}

// Name returns the proposal name for a 1-based batch number
func (n Namer) Name(batchNum int) (string, error) {
	if batchNum < 1 {
		return "", fmt.Errorf("invalid batch number %d", batchNum)
	}
	if batchNum > n.Capacity() {
		return "", &TooManyBatchesError{Batches: batchNum, Capacity: n.Capacity()}
	}
	return n.Prefix + n.Template[batchNum-1:batchNum], nil
}
