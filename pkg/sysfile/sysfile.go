// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package sysfile

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser splits small system files (/proc/swaps, grubenv, sysconfig) into
// entries and key/value pairs.
type Parser struct {
	delimiter       string
	maxSize         int
	skipComments    bool
	kvDelimiter     string
	vDefault        string
	vTrimChars      string
	skipEmptyValues bool
	fieldSplit      bool
}

// Pair is a single key/value entry, kept in file order.
type Pair struct {
	Key   string
	Value string
}

// WithDelimiter sets the delimiter used to split entries in the file.
// Default is newline ("\n").
func WithDelimiter(delim string) Option {
	return func(p *Parser) {
		p.delimiter = delim
	}
}

// WithMaxSize sets the maximum size (in bytes) of the content to be parsed.
// Default is 1MB.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithSkipComments sets whether to skip lines starting with '#'.
// Default is true.
func WithSkipComments(skip bool) Option {
	return func(p *Parser) {
		p.skipComments = skip
	}
}

// WithKVDelimiter sets the key-value delimiter. Default is "=".
func WithKVDelimiter(kvDelim string) Option {
	return func(p *Parser) {
		p.kvDelimiter = kvDelim
	}
}

// WithVDefault sets the value used when an entry has no delimiter.
func WithVDefault(vDefault string) Option {
	return func(p *Parser) {
		p.vDefault = vDefault
	}
}

// WithVTrimChars sets characters trimmed from both ends of values.
func WithVTrimChars(trimChars string) Option {
	return func(p *Parser) {
		p.vTrimChars = trimChars
	}
}

// WithSkipEmptyValues drops entries whose value ends up empty.
func WithSkipEmptyValues(skip bool) Option {
	return func(p *Parser) {
		p.skipEmptyValues = skip
	}
}

// WithFields splits entries on runs of whitespace instead of kvDelimiter,
// which suits column files such as /proc/swaps. Fields returns the columns.
func WithFields() Option {
	return func(p *Parser) {
		p.fieldSplit = true
	}
}

// NewParser creates a new parser with the provided options.
// Default settings: newline delimiter, "=" key/value delimiter, 1MB max size,
// comment lines skipped.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		delimiter:    "\n",
		maxSize:      1 << 20,
		skipComments: true,
		kvDelimiter:  "=",
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMap reads the file at path and returns its key/value entries.
// Later duplicates overwrite earlier ones.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	pairs, err := p.GetPairs(path)
	if err != nil {
		return nil, err
	}
	return toMap(pairs), nil
}

// GetPairs reads the file at path and returns its key/value entries in order.
func (p *Parser) GetPairs(path string) ([]Pair, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return nil, err
	}
	return p.pairs(lines), nil
}

// ParseMap parses content read from r into key/value entries.
func (p *Parser) ParseMap(r io.Reader) (map[string]string, error) {
	b, err := io.ReadAll(io.LimitReader(r, int64(p.maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	lines, err := p.lines(b, "content")
	if err != nil {
		return nil, err
	}
	return toMap(p.pairs(lines)), nil
}

// GetFields reads the file at path and returns the whitespace-separated
// columns of every entry.
func (p *Parser) GetFields(path string) ([][]string, error) {
	lines, err := p.GetLines(path)
	if err != nil {
		return nil, err
	}
	res := make([][]string, 0, len(lines))
	for _, line := range lines {
		res = append(res, strings.Fields(line))
	}
	return res, nil
}

// GetLines reads the file at path and splits its content into non-empty
// entries based on the configured delimiter.
func (p *Parser) GetLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	return p.lines(b, path)
}

func (p *Parser) lines(b []byte, source string) ([]string, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of %q is not valid UTF-8", source)
	}

	if len(b) > p.maxSize {
		return nil, fmt.Errorf("%q exceeds maximum size of %d bytes", source, p.maxSize)
	}

	parts := bytes.Split(b, []byte(p.delimiter))

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(string(part))
		if clean == "" {
			continue
		}
		if p.skipComments && strings.HasPrefix(clean, "#") {
			continue
		}
		result = append(result, clean)
	}

	return result, nil
}

func (p *Parser) pairs(lines []string) []Pair {
	result := make([]Pair, 0, len(lines))
	for _, line := range lines {
		var kv []string
		if p.fieldSplit {
			kv = strings.SplitN(strings.Join(strings.Fields(line), " "), " ", 2)
		} else {
			kv = strings.SplitN(line, p.kvDelimiter, 2)
		}

		key := strings.TrimSpace(kv[0])
		if len(kv) != 2 {
			if p.skipEmptyValues && p.vDefault == "" {
				slog.Debug("skipping entry with key-only and empty default", "key", key)
				continue
			}
			result = append(result, Pair{Key: key, Value: p.vDefault})
			continue
		}

		value := strings.TrimSpace(kv[1])
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}

		if p.skipEmptyValues && value == "" {
			slog.Debug("skipping entry with empty value", "key", key)
			continue
		}

		result = append(result, Pair{Key: key, Value: value})
	}
	return result
}

func toMap(pairs []Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		m[kv.Key] = kv.Value
	}
	return m
}
