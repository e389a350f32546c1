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

// Package msig wraps batches of actions into multisig proposals
package msig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/chainrpc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/seedsproject/seedsdist/msig")

const (
	ContractAccount = "eosio.msig"
	DefaultExpiry   = 7 * 24 * time.Hour
)

// AccountFetcher looks up account permissions
type AccountFetcher interface {
	GetAccount(ctx context.Context, name string) (*chainrpc.Account, error)
}

// Serializer packs actions into their binary form
type Serializer interface {
	SerializeActions(
		ctx context.Context,
		actions []action.Action,
	) ([]action.SerializedAction, error)
}

// DefaultExpiration returns the expiration used when none is configured
func DefaultExpiration(now time.Time) time.Time {
	return now.Add(DefaultExpiry).UTC().Truncate(time.Second)
}

type BuilderConfig struct {
	Logger     *slog.Logger
	Accounts   AccountFetcher
	Serializer Serializer
	// Proposer authorizes the propose action
	Proposer string
	// Controlled is the account whose active permission approves proposals
	Controlled string
	Namer      Namer
	// Expiration is shared by every proposal of a run
	Expiration     time.Time
	DedupApprovers bool
}

// Builder produces propose actions
type Builder struct {
	config BuilderConfig
	logger *slog.Logger
}

func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if cfg.Accounts == nil {
		return nil, errors.New("msig: Accounts is required")
	}
	if cfg.Serializer == nil {
		return nil, errors.New("msig: Serializer is required")
	}
	if !action.ValidName(cfg.Proposer) {
		return nil, errors.New("msig: invalid proposer account")
	}
	if !action.ValidName(cfg.Controlled) {
		return nil, errors.New("msig: invalid controlled account")
	}
	if cfg.Expiration.IsZero() {
		return nil, errors.New("msig: Expiration is required")
	}
	if err := cfg.Namer.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Builder{
		config: cfg,
		logger: cfg.Logger.With("component", "msig"),
	}, nil
}

// Namer returns the namer used for proposal names
func (b *Builder) Namer() Namer {
	return b.config.Namer
}

// Proposal is a propose action and the name it was created under
type Proposal struct {
	Name      string
	Approvers []action.PermissionLevel
	Action    action.Action
}

// Propose wraps a batch's actions into a single propose action
func (b *Builder) Propose(
	ctx context.Context,
	batchNum int,
	actions []action.Action,
) (*Proposal, error) {
	name, err := b.config.Namer.Name(batchNum)
	if err != nil {
		return nil, err
	}
	packed, err := b.serialize(ctx, batchNum, actions)
	if err != nil {
		return nil, err
	}
	approvers, err := b.approvers(ctx, batchNum)
	if err != nil {
		return nil, err
	}
	b.logger.Debug(
		"built proposal",
		"batch", batchNum,
		"proposal", name,
		"actions", len(actions),
		"approvers", len(approvers),
	)
	return &Proposal{
		Name:      name,
		Approvers: approvers,
		Action: action.Action{
			Account: ContractAccount,
			Name:    "propose",
			Authorization: []action.PermissionLevel{
				action.Active(b.config.Proposer),
			},
			Data: action.Propose{
				Proposer:     b.config.Proposer,
				ProposalName: name,
				Requested:    approvers,
				Trx: action.Transaction{
					Expiration: b.config.Expiration,
					Actions:    packed,
				},
			},
		},
	}, nil
}

func (b *Builder) serialize(
	ctx context.Context,
	batchNum int,
	actions []action.Action,
) ([]action.SerializedAction, error) {
	ctx, span := tracer.Start(
		ctx,
		"serialize",
		trace.WithAttributes(
			attribute.Int("batch", batchNum),
			attribute.Int("actions", len(actions)),
		),
	)
	defer span.End()
	packed, err := b.config.Serializer.SerializeActions(ctx, actions)
	if err == nil && len(packed) != len(actions) {
		err = errors.New("serializer returned a different number of actions")
	}
	if err != nil {
		err = &SerializationError{Batch: batchNum, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return packed, nil
}

func (b *Builder) approvers(
	ctx context.Context,
	batchNum int,
) ([]action.PermissionLevel, error) {
	ctx, span := tracer.Start(
		ctx,
		"approvers",
		trace.WithAttributes(
			attribute.Int("batch", batchNum),
			attribute.String("account", b.config.Controlled),
		),
	)
	defer span.End()
	info, err := b.config.Accounts.GetAccount(ctx, b.config.Controlled)
	var approvers []action.PermissionLevel
	if err == nil {
		approvers, err = Approvers(
			b.config.Controlled,
			info,
			ApproverOptions{Dedup: b.config.DedupApprovers},
		)
	}
	if err != nil {
		err = &ApproverLookupError{
			Batch:   batchNum,
			Account: b.config.Controlled,
			Err:     err,
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("approvers", len(approvers)))
	return approvers, nil
}
