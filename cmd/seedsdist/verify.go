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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/seedsproject/seedsdist/distribution"
	"github.com/seedsproject/seedsdist/internal/config"
	"github.com/spf13/cobra"
)

func verifyRun(
	cfg *config.Config,
	logger *slog.Logger,
	req runRequest,
	out io.Writer,
) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	opts, err := pipelineOptions(cfg, req, logger)
	if err != nil {
		return err
	}
	report, err := distribution.Verify(opts)
	if err != nil {
		return err
	}
	return report.Print(out)
}

func verifyCommand() *cobra.Command {
	var voice bool
	var direct bool
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check a ledger file and show its batches without publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errors.New("no config found in context")
			}
			batchLength, err := cmd.Flags().GetInt("batch-length")
			if err != nil {
				return err
			}
			req := runRequest{
				kind:        kindToken,
				path:        args[0],
				direct:      direct,
				batchLength: batchLength,
			}
			if voice {
				req.kind = kindVoice
			}
			logger := commonRun()
			if err := verifyRun(cfg, logger, req, cmd.OutOrStdout()); err != nil {
				logger.Error(err.Error())
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&voice, "voice", false, "the file is a comma-separated voice file")
	cmd.Flags().BoolVar(&direct, "direct", false, "skip the proposal name capacity check")
	return cmd
}
