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

// Package ledgerfile reads the delimited distribution files exported from the
// off-chain spreadsheet. Values are kept as the literal source text so that
// reconciliation can compare against exactly what the operator reviewed.
package ledgerfile

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
)

// maxLineBytes bounds a single line of input
const maxLineBytes = 1 << 20

// ErrReaderConsumed is returned when Records is iterated more than once
var ErrReaderConsumed = errors.New("ledgerfile: records already consumed")

// FileAccessError is returned when the source file cannot be opened or read
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access ledger file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Schema describes the column layout of a distribution file. A negative
// column index means the field is not present in the file.
type Schema struct {
	Name       string
	Delimiter  string
	Account    int
	Label      int
	Current    int
	Multiplier int
	Target     int
}

// TokenSchema is the tab-separated token redistribution export:
// account, name, current, multiplier, after
var TokenSchema = Schema{
	Name:       "token",
	Delimiter:  "\t",
	Account:    0,
	Label:      1,
	Current:    2,
	Multiplier: 3,
	Target:     4,
}

// VoiceSchema is the comma-separated voice reset export: account, amount.
// The amount is both the current and the target value.
var VoiceSchema = Schema{
	Name:       "voice",
	Delimiter:  ",",
	Account:    0,
	Label:      -1,
	Current:    1,
	Multiplier: -1,
	Target:     1,
}

// Record is a single row of a distribution file
type Record struct {
	// Line is the 1-based line number in the source file
	Line          int
	Account       string
	Name          string
	CurrentAmount string
	Multiplier    string
	TargetAmount  string
}

// IsBlank reports whether the record came from an empty line
func (r Record) IsBlank() bool {
	return r.Account == "" && r.Name == "" && r.CurrentAmount == "" &&
		r.Multiplier == "" && r.TargetAmount == ""
}

type Option func(*Reader)

// WithSkipBlankLines drops records produced by empty lines
func WithSkipBlankLines() Option {
	return func(r *Reader) {
		r.skipBlank = true
	}
}

// Reader streams records from a distribution file
type Reader struct {
	file      *os.File
	path      string
	schema    Schema
	skipBlank bool
	consumed  bool
}

// Open opens path for reading with the given schema. The file is closed once
// Records has been fully iterated or when Close is called.
func Open(path string, schema Schema, opts ...Option) (*Reader, error) {
	if schema.Delimiter == "" {
		return nil, errors.New("ledgerfile: schema delimiter is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	r := &Reader{
		file:   f,
		path:   path,
		schema: schema,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close releases the underlying file
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Records returns the file's records in source order. The header line is
// always skipped. The sequence can only be iterated once.
func (r *Reader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if r.consumed || r.file == nil {
			yield(Record{}, ErrReaderConsumed)
			return
		}
		r.consumed = true
		defer r.Close()
		scanner := bufio.NewScanner(r.file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if lineNum == 1 {
				continue
			}
			rec := r.schema.parse(lineNum, scanner.Text())
			if r.skipBlank && rec.IsBlank() {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Record{}, &FileAccessError{Path: r.path, Err: err})
		}
	}
}

func (s Schema) parse(lineNum int, line string) Record {
	fields := strings.Split(strings.TrimRight(line, "\r"), s.Delimiter)
	field := func(idx int) string {
		if idx < 0 || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}
	return Record{
		Line:          lineNum,
		Account:       field(s.Account),
		Name:          field(s.Label),
		CurrentAmount: field(s.Current),
		Multiplier:    field(s.Multiplier),
		TargetAmount:  field(s.Target),
	}
}

// ReadAll opens path and collects every record
func ReadAll(path string, schema Schema, opts ...Option) ([]Record, error) {
	r, err := Open(path, schema, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var ret []Record
	for rec, err := range r.Records() {
		if err != nil {
			return nil, err
		}
		ret = append(ret, rec)
	}
	return ret, nil
}
