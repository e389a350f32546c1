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

// Package distribution runs a ledger file through reconciliation, batching,
// proposal building and signing request publication
package distribution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/batch"
	"github.com/seedsproject/seedsdist/esr"
	"github.com/seedsproject/seedsdist/journal"
	"github.com/seedsproject/seedsdist/ledgerfile"
	"github.com/seedsproject/seedsdist/msig"
	"github.com/seedsproject/seedsdist/reconcile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/seedsproject/seedsdist/distribution")

type Mode int

const (
	// ModeMultisig publishes one eosio.msig propose action per batch
	ModeMultisig Mode = iota
	// ModeDirect publishes the raw batch actions
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeMultisig:
		return "multisig"
	case ModeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Proposer wraps a batch's actions into a multisig proposal
type Proposer interface {
	Propose(ctx context.Context, batchNum int, actions []action.Action) (*msig.Proposal, error)
	Namer() msig.Namer
}

// Publisher turns actions into a signing request
type Publisher interface {
	Publish(ctx context.Context, batchNum int, actions []action.Action) (*esr.Result, error)
}

// Recorder stores published batches
type Recorder interface {
	Record(ctx context.Context, entry *journal.Entry) error
}

type Options struct {
	Logger         *slog.Logger
	RunID          string
	Path           string
	Schema         ledgerfile.Schema
	SkipBlankLines bool
	Batch          batch.Config
	Mode           Mode
	// Namer is only used by Verify. Run uses the proposer's namer.
	Namer     msig.Namer
	Proposer  Proposer
	Publisher Publisher
	Journal   Recorder
	Metrics   *Metrics
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return o.Logger.With("component", "distribution")
}

// Verify reads, reconciles and batches the file without any network calls.
// In multisig mode it also checks that every batch can be named.
func Verify(opts Options) (*Report, error) {
	namer := opts.Namer
	if namer.Template == "" {
		namer = msig.DefaultNamer()
	}
	return prepare(context.Background(), &opts, namer)
}

// Run publishes every batch of the file in order. When a batch fails the
// report of the batches already published is returned with the error.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Publisher == nil {
		return nil, errors.New("distribution: publisher is required")
	}
	var namer msig.Namer
	if opts.Mode == ModeMultisig {
		if opts.Proposer == nil {
			return nil, errors.New("distribution: proposer is required in multisig mode")
		}
		namer = opts.Proposer.Namer()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	logger := opts.logger().With("run", opts.RunID)
	ctx, span := tracer.Start(
		ctx,
		"distribution.run",
		trace.WithAttributes(
			attribute.String("run", opts.RunID),
			attribute.String("file", opts.Path),
			attribute.String("mode", opts.Mode.String()),
		),
	)
	defer span.End()
	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	report, err := prepare(ctx, &opts, namer)
	if err != nil {
		return nil, fail(err)
	}
	span.SetAttributes(attribute.Int("batches", len(report.Batches)))
	logger.Info(
		fmt.Sprintf(
			"distributing %d records in %d batches, total %s",
			report.Total.Count,
			len(report.Batches),
			report.Total,
		),
		"mode", opts.Mode.String(),
	)
	for i := range report.Batches {
		if err := ctx.Err(); err != nil {
			return report, fail(err)
		}
		b := &report.Batches[i]
		res, err := publishBatch(ctx, &opts, b)
		if err != nil {
			if opts.Metrics != nil {
				opts.Metrics.publishFailures.Inc()
			}
			logger.Error(
				"batch failed",
				"batch", b.Number,
				"records", len(b.Records),
				"amount", b.Sum.String(),
				"error", err,
			)
			return report, fail(err)
		}
		report.Results = append(report.Results, *res)
		logger.Info(
			"batch published",
			"batch", b.Number,
			"proposal", res.ProposalName,
			"records", res.Records,
			"amount", res.Sum.String(),
			"esr", res.ESR,
		)
		if opts.Journal != nil {
			if err := opts.Journal.Record(ctx, &journal.Entry{
				RunID:        opts.RunID,
				Mode:         opts.Mode.String(),
				SourceFile:   opts.Path,
				BatchNumber:  res.BatchNumber,
				ProposalName: res.ProposalName,
				Records:      res.Records,
				SumCents:     res.Sum.Cents,
				ESR:          res.ESR,
				QR:           res.QR,
			}); err != nil {
				return report, fail(err)
			}
		}
	}
	return report, nil
}

// prepare reads, reconciles and batches the file. The rest of the run only
// starts once every record has been accepted.
func prepare(
	ctx context.Context,
	opts *Options,
	namer msig.Namer,
) (*Report, error) {
	var readOpts []ledgerfile.Option
	if opts.SkipBlankLines {
		readOpts = append(readOpts, ledgerfile.WithSkipBlankLines())
	}
	records, err := ledgerfile.ReadAll(opts.Path, opts.Schema, readOpts...)
	if err != nil {
		return nil, err
	}
	total, err := reconcile.Reconcile(records)
	if err != nil {
		return nil, err
	}
	batches, err := batch.Build(records, opts.Batch)
	if err != nil {
		return nil, err
	}
	if opts.Mode == ModeMultisig {
		if err := namer.Check(len(batches)); err != nil {
			return nil, err
		}
	}
	opts.logger().Debug(
		"prepared batches",
		"file", opts.Path,
		"records", total.Count,
		"batches", len(batches),
	)
	return &Report{
		RunID:   opts.RunID,
		Mode:    opts.Mode,
		Path:    opts.Path,
		Total:   total,
		Batches: batches,
	}, nil
}

func publishBatch(
	ctx context.Context,
	opts *Options,
	b *batch.Batch,
) (*ProposalResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(
		ctx,
		"batch",
		trace.WithAttributes(
			attribute.Int("batch", b.Number),
			attribute.Int("records", len(b.Records)),
		),
	)
	defer span.End()
	res := &ProposalResult{
		BatchNumber: b.Number,
		Records:     len(b.Records),
		Sum:         b.Sum,
	}
	actions := b.Actions
	if opts.Mode == ModeMultisig {
		proposal, err := opts.Proposer.Propose(ctx, b.Number, b.Actions)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		res.ProposalName = proposal.Name
		res.Approvers = proposal.Approvers
		actions = []action.Action{proposal.Action}
		span.SetAttributes(attribute.String("proposal", proposal.Name))
	}
	signing, err := publish(ctx, opts.Publisher, b.Number, actions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res.ESR = signing.ESR
	res.QR = signing.QR
	if opts.Metrics != nil {
		opts.Metrics.publishDuration.Observe(time.Since(start).Seconds())
		opts.Metrics.batchesPublished.Inc()
		opts.Metrics.recordsProcessed.Add(float64(len(b.Records)))
		opts.Metrics.lastBatchSum.Set(b.Sum.Decimal().InexactFloat64())
	}
	return res, nil
}

func publish(
	ctx context.Context,
	publisher Publisher,
	batchNum int,
	actions []action.Action,
) (*esr.Result, error) {
	ctx, span := tracer.Start(
		ctx,
		"publish",
		trace.WithAttributes(attribute.Int("batch", batchNum)),
	)
	defer span.End()
	res, err := publisher.Publish(ctx, batchNum, actions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return res, nil
}
