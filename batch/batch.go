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

// Package batch partitions distribution records into bounded batches and lays
// out the actions of each batch.
package batch

import (
	"errors"
	"fmt"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/ledgerfile"
	"github.com/seedsproject/seedsdist/reconcile"
)

// Batch lengths chosen to stay under the chain's per-transaction limits
const (
	DefaultTokenBatchLength = 17
	DefaultVoiceBatchLength = 119
)

var ErrInvalidBatchLength = errors.New("batch: max batch length must be positive")

// FlushPredicate decides whether the buffered records form a complete batch
type FlushPredicate func(buffered int, maxLength int, isLast bool) bool

// FlushWhenOver flushes once the buffer holds more than maxLength records, so
// full batches carry maxLength+1 records. This matches how past
// distributions were batched.
func FlushWhenOver(buffered int, maxLength int, isLast bool) bool {
	return buffered > maxLength || isLast
}

// FlushWhenFull flushes as soon as the buffer holds maxLength records
func FlushWhenFull(buffered int, maxLength int, isLast bool) bool {
	return buffered >= maxLength || isLast
}

// Batch is a group of records destined for a single transaction
type Batch struct {
	// Number is 1-based
	Number  int
	Records []ledgerfile.Record
	Sum     reconcile.Sum
	Actions []action.Action
}

// Partition splits records left to right into batches. An empty input yields
// no batches.
func Partition(
	records []ledgerfile.Record,
	maxLength int,
	flush FlushPredicate,
) ([]Batch, error) {
	if maxLength < 1 {
		return nil, ErrInvalidBatchLength
	}
	if flush == nil {
		flush = FlushWhenOver
	}
	var batches []Batch
	var buffer []ledgerfile.Record
	for i, rec := range records {
		buffer = append(buffer, rec)
		if flush(len(buffer), maxLength, i == len(records)-1) {
			batches = append(
				batches,
				Batch{
					Number:  len(batches) + 1,
					Records: buffer,
				},
			)
			buffer = nil
		}
	}
	return batches, nil
}

// Plan produces the actions for a distribution
type Plan interface {
	// Aggregate returns the actions that precede the per-record actions of
	// a batch, derived from the batch total
	Aggregate(batchNum int, sum reconcile.Sum) ([]action.Action, error)
	// RecordActions returns the actions for a single record
	RecordActions(rec ledgerfile.Record) ([]action.Action, error)
}

type Config struct {
	MaxLength int
	Flush     FlushPredicate
	Plan      Plan
}

// Build partitions records and lays out every batch's actions: the plan's
// aggregate actions first, then each record's actions in record order
func Build(records []ledgerfile.Record, cfg Config) ([]Batch, error) {
	if cfg.Plan == nil {
		return nil, errors.New("batch: plan is required")
	}
	batches, err := Partition(records, cfg.MaxLength, cfg.Flush)
	if err != nil {
		return nil, err
	}
	for i := range batches {
		b := &batches[i]
		sum, err := reconcile.Reconcile(b.Records)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b.Number, err)
		}
		b.Sum = sum
		actions, err := cfg.Plan.Aggregate(b.Number, sum)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", b.Number, err)
		}
		for _, rec := range b.Records {
			recActions, err := cfg.Plan.RecordActions(rec)
			if err != nil {
				return nil, fmt.Errorf(
					"batch %d: account %q (line %d): %w",
					b.Number,
					rec.Account,
					rec.Line,
					err,
				)
			}
			actions = append(actions, recActions...)
		}
		b.Actions = actions
	}
	return batches, nil
}
