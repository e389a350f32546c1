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

package distribution

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/batch"
	"github.com/seedsproject/seedsdist/reconcile"
)

// ProposalResult is one published batch
type ProposalResult struct {
	BatchNumber int
	// ProposalName is empty in direct mode
	ProposalName string
	Records      int
	Sum          reconcile.Sum
	Approvers    []action.PermissionLevel
	ESR          string
	QR           string
}

type Report struct {
	RunID   string
	Mode    Mode
	Path    string
	Total   reconcile.Sum
	Batches []batch.Batch
	Results []ProposalResult
}

// Complete reports whether every batch was published
func (r *Report) Complete() bool {
	return len(r.Batches) > 0 && len(r.Results) == len(r.Batches)
}

func (r *Report) result(batchNum int) (ProposalResult, bool) {
	for _, res := range r.Results {
		if res.BatchNumber == batchNum {
			return res, true
		}
	}
	return ProposalResult{}, false
}

// Print writes a human-readable report ordered by batch number
func (r *Report) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(
		w,
		"run %s (%s): %s, %d records in %d batches, total %s\n",
		r.RunID,
		r.Mode,
		r.Path,
		r.Total.Count,
		len(r.Batches),
		r.Total,
	); err != nil {
		return err
	}
	batches := slices.Clone(r.Batches)
	slices.SortFunc(batches, func(a, b batch.Batch) int {
		return a.Number - b.Number
	})
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tPROPOSAL\tRECORDS\tSUM\tSTATUS")
	for _, b := range batches {
		status := "pending"
		proposal := "-"
		if res, ok := r.result(b.Number); ok {
			status = "published"
			if res.ProposalName != "" {
				proposal = res.ProposalName
			}
		}
		fmt.Fprintf(
			tw,
			"%d\t%s\t%d\t%s\t%s\n",
			b.Number,
			proposal,
			len(b.Records),
			b.Sum,
			status,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	results := slices.Clone(r.Results)
	slices.SortFunc(results, func(a, b ProposalResult) int {
		return a.BatchNumber - b.BatchNumber
	})
	for _, res := range results {
		if _, err := fmt.Fprintf(
			w,
			"batch %d\n  esr: %s\n  qr:  %s\n",
			res.BatchNumber,
			res.ESR,
			res.QR,
		); err != nil {
			return err
		}
	}
	return nil
}
