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

package kernel

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrParse is returned when a command line is not a valid UTF-8 string.
// Unknown tokens are never an error.
var ErrParse = errors.New("kernel command line is not valid UTF-8")

// Param is a single command line token: either a bare flag ("quiet") or a
// key/value pair ("resume=/dev/sda2").
type Param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Flag  bool   `json:"flag,omitempty" yaml:"flag,omitempty"`
}

// ParseParam splits a token on its first '='. A token without '=' is a flag.
func ParseParam(token string) Param {
	key, value, found := strings.Cut(token, "=")
	if !found {
		return Param{Key: token, Flag: true}
	}
	return Param{Key: key, Value: value}
}

// String renders the token as it appears on the command line.
func (p Param) String() string {
	if p.Flag {
		return p.Key
	}
	return p.Key + "=" + p.Value
}

// ValueState tells whether a key is absent, present as a flag, or assigned.
type ValueState int

const (
	// Absent means no token carries the key.
	Absent ValueState = iota
	// FlagPresent means the last token with the key is a bare flag.
	FlagPresent
	// Assigned means the last token with the key has a value.
	Assigned
)

// Value is the result of a lookup by key.
type Value struct {
	State ValueState
	Value string
}

// Present reports whether the key appears at all.
func (v Value) Present() bool { return v.State != Absent }

// IsFlag reports whether the last occurrence is a bare flag.
func (v Value) IsFlag() bool { return v.State == FlagPresent }

// String returns the assigned value, or an empty string for flags and absent keys.
func (v Value) String() string { return v.Value }

// List is an ordered, duplicate-tolerant kernel command line.
// The zero value is an empty list ready to use.
type List struct {
	params []Param
}

// New returns a list holding the given tokens in order.
func New(params ...Param) *List {
	return &List{params: append([]Param(nil), params...)}
}

// Parse splits text on whitespace into tokens.
func Parse(text string) (*List, error) {
	l := &List{}
	if err := l.Replace(text); err != nil {
		return nil, err
	}
	return l, nil
}

// Serialize joins the tokens with single spaces, preserving order.
func (l *List) Serialize() string {
	if l == nil {
		return ""
	}
	return strings.Join(l.Tokens(), " ")
}

// String implements fmt.Stringer.
func (l *List) String() string {
	return l.Serialize()
}

// Tokens returns the rendered tokens in order.
func (l *List) Tokens() []string {
	if l == nil {
		return nil
	}
	res := make([]string, len(l.params))
	for i, p := range l.params {
		res[i] = p.String()
	}
	return res
}

// Params returns a copy of the tokens.
func (l *List) Params() []Param {
	if l == nil {
		return nil
	}
	return append([]Param(nil), l.params...)
}

// Len returns the number of tokens.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.params)
}

// Empty reports whether the list has no tokens.
func (l *List) Empty() bool {
	return l.Len() == 0
}

// Clone returns an independent copy.
func (l *List) Clone() *List {
	if l == nil {
		return &List{}
	}
	return New(l.params...)
}

// Parameter looks up key. Later tokens shadow earlier ones, so the last
// occurrence decides the result.
func (l *List) Parameter(key string) Value {
	if l == nil {
		return Value{}
	}
	for i := len(l.params) - 1; i >= 0; i-- {
		p := l.params[i]
		if p.Key != key {
			continue
		}
		if p.Flag {
			return Value{State: FlagPresent}
		}
		return Value{State: Assigned, Value: p.Value}
	}
	return Value{}
}

// Values returns the values of every key=value token with key, in order.
func (l *List) Values(key string) []string {
	if l == nil {
		return nil
	}
	var res []string
	for _, p := range l.params {
		if p.Key == key && !p.Flag {
			res = append(res, p.Value)
		}
	}
	return res
}

// AddParameter places key=value according to placer. A nil placer appends.
func (l *List) AddParameter(key, value string, placer Placer) {
	l.add(Param{Key: key, Value: value}, placer)
}

// AddFlag places a bare flag according to placer. A nil placer appends.
func (l *List) AddFlag(key string, placer Placer) {
	l.add(Param{Key: key, Flag: true}, placer)
}

func (l *List) add(p Param, placer Placer) {
	if placer == nil {
		placer = AppendPlacer{}
	}
	l.params = placer.Place(l.params, p)
}

// RemoveParameter deletes every token matched by m.
func (l *List) RemoveParameter(m Matcher) {
	kept := l.params[:0]
	for _, p := range l.params {
		if !m.Match(p) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(l.params); i++ {
		l.params[i] = Param{}
	}
	l.params = kept
}

// Replace discards the current tokens and parses text in their place.
// The list is left untouched when text is not valid UTF-8.
func (l *List) Replace(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: %q", ErrParse, text)
	}
	l.SetTokens(strings.Fields(text))
	return nil
}

// SetTokens replaces the list contents with already split tokens.
func (l *List) SetTokens(tokens []string) {
	params := make([]Param, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		params = append(params, ParseParam(tok))
	}
	l.params = params
}

// MarshalText implements encoding.TextMarshaler.
func (l *List) MarshalText() ([]byte, error) {
	return []byte(l.Serialize()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *List) UnmarshalText(text []byte) error {
	return l.Replace(string(text))
}
