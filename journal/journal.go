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

// Package journal keeps an optional sqlite record of published batches so an
// operator can tell which batches of an interrupted run went out
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Entry is one published batch
type Entry struct {
	ID           uint   `gorm:"primarykey"`
	RunID        string `gorm:"index;size:64"`
	Mode         string `gorm:"size:16"`
	SourceFile   string
	BatchNumber  int
	ProposalName string `gorm:"size:12"`
	Records      int
	SumCents     int64
	ESR          string
	QR           string
	CreatedAt    time.Time
}

func (Entry) TableName() string {
	return "published_batch"
}

type Journal struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the journal at path. An empty path uses an
// in-memory database.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn := "file::memory:"
	if path != "" {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read journal dir: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create journal dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	}
	db, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger: gormlogger.Discard,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps the in-memory database alive and serializes
	// writes
	sqlDB.SetMaxOpenConns(1)
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Debug(fmt.Sprintf("creating table: %#v", &Entry{}))
	if err := db.AutoMigrate(&Entry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	return &Journal{
		db:     db,
		logger: logger.With("component", "journal"),
	}, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores a published batch
func (j *Journal) Record(ctx context.Context, entry *Entry) error {
	if result := j.db.WithContext(ctx).Create(entry); result.Error != nil {
		return fmt.Errorf(
			"recording batch %d of run %s: %w",
			entry.BatchNumber,
			entry.RunID,
			result.Error,
		)
	}
	return nil
}

// Entries returns the batches of a run ordered by batch number
func (j *Journal) Entries(ctx context.Context, runID string) ([]Entry, error) {
	var ret []Entry
	result := j.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("batch_number ASC").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// LatestRunID returns the run that recorded the most recent batch, or an
// empty string when the journal is empty
func (j *Journal) LatestRunID(ctx context.Context) (string, error) {
	var entry Entry
	result := j.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&entry)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", nil
	}
	return entry.RunID, nil
}
