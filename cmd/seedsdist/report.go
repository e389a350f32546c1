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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/seedsproject/seedsdist/internal/config"
	"github.com/seedsproject/seedsdist/journal"
	"github.com/seedsproject/seedsdist/reconcile"
	"github.com/spf13/cobra"
)

func reportRun(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	runID string,
	out io.Writer,
) error {
	if cfg.JournalPath == "" {
		return errors.New("journalPath is required")
	}
	j, err := journal.Open(cfg.JournalPath, logger)
	if err != nil {
		return err
	}
	defer j.Close()
	if runID == "" {
		runID, err = j.LatestRunID(ctx)
		if err != nil {
			return err
		}
		if runID == "" {
			return errors.New("journal has no runs")
		}
	}
	entries, err := j.Entries(ctx, runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no batches recorded for run %s", runID)
	}
	fmt.Fprintf(out, "run %s (%s): %s\n", runID, entries[0].Mode, entries[0].SourceFile)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tPROPOSAL\tRECORDS\tSUM\tPUBLISHED\tESR")
	for _, e := range entries {
		proposal := e.ProposalName
		if proposal == "" {
			proposal = "-"
		}
		fmt.Fprintf(
			tw,
			"%d\t%s\t%d\t%s\t%s\t%s\n",
			e.BatchNumber,
			proposal,
			e.Records,
			reconcile.Sum{Cents: e.SumCents},
			e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			e.ESR,
		)
	}
	return tw.Flush()
}

func reportCommand() *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "List the batches recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			logger := commonRun()
			if err := reportRun(cmd.Context(), cfg, logger, runID, cmd.OutOrStdout()); err != nil {
				logger.Error(err.Error())
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id to list (default: most recent run)")
	return cmd
}
