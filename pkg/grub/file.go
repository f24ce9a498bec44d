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

package grub

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/joho/godotenv"
	"k8s.io/utils/ptr"
)

var keyLine = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*[=:]`)

// boolKey describes how a tri-state field maps to its file key.
type boolKey struct {
	key      string
	field    func(d *Default) *Boolean
	inverted bool
	yes, no  string
}

var boolKeys = []boolKey{
	{KeyDisableOSProber, func(d *Default) *Boolean { return &d.OSProber }, true, "true", "false"},
	{KeyEnableCryptodisk, func(d *Default) *Boolean { return &d.Cryptodisk }, false, "y", "n"},
	{KeyDisableRecovery, func(d *Default) *Boolean { return &d.RecoveryEntry }, true, "true", "false"},
}

// Parse reads shell-style KEY="value" text. Keys not modelled as fields land
// in Generic in file order.
func Parse(text string) (*Default, error) {
	env, err := godotenv.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse grub defaults: %w", err)
	}

	d := NewDefault()
	for key, list := range d.Lists() {
		v, ok := env[key]
		if !ok {
			continue
		}
		if err := list.Replace(v); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		delete(env, key)
	}

	for _, f := range d.stringFields() {
		if v, ok := env[f.key]; ok {
			*f.value = ptr.To(v)
			delete(env, f.key)
		}
	}

	for _, b := range boolKeys {
		v, ok := env[b.key]
		if !ok {
			continue
		}
		val, known := parseFileBool(v)
		if !known {
			// left in Generic so the value survives a round trip
			continue
		}
		if b.inverted {
			val = !val
		}
		b.field(d).Set(val)
		delete(env, b.key)
	}

	for _, key := range keyOrder(text) {
		if v, ok := env[key]; ok {
			d.Generic.Set(key, v)
			delete(env, key)
		}
	}

	return d, nil
}

func keyOrder(text string) []string {
	var keys []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if m := keyLine.FindStringSubmatch(sc.Text()); m != nil {
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Render produces the file text. Modelled keys come first in a fixed order,
// generic keys follow in insertion order.
func (d *Default) Render() (string, error) {
	var sb strings.Builder
	write := func(key, value string) error {
		line, err := godotenv.Marshal(map[string]string{key: value})
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", key, err)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		return nil
	}

	for _, key := range []string{KeyKernelParams, KeyXenHypervisorParams, KeyXenKernelParams} {
		if err := write(key, d.Lists()[key].Serialize()); err != nil {
			return "", err
		}
	}
	for _, f := range d.stringFields() {
		if *f.value == nil {
			continue
		}
		if err := write(f.key, **f.value); err != nil {
			return "", err
		}
	}
	for _, b := range boolKeys {
		v := *b.field(d)
		if !v.Defined() {
			continue
		}
		on := v.Enabled()
		if b.inverted {
			on = !on
		}
		val := b.no
		if on {
			val = b.yes
		}
		if err := write(b.key, val); err != nil {
			return "", err
		}
	}
	for _, key := range d.Generic.Keys() {
		v, _ := d.Generic.Get(key)
		if err := write(key, v); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// Load reads path. A missing file is a broken configuration.
func Load(path string) (*Default, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithContext(errors.ErrCodeBrokenConfiguration,
				fmt.Sprintf("file %s missing on system", path), map[string]any{"path": path})
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read %s", path), err)
	}
	d, err := Parse(string(b))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeBrokenConfiguration,
			"unreadable grub defaults", err, map[string]any{"path": path})
	}
	return d, nil
}

// Save renders the document and replaces path atomically.
func (d *Default) Save(path string) error {
	text, err := d.Render()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to render grub defaults", err)
	}
	return WriteFileAtomic(path, []byte(text), 0o644)
}

// WriteFileAtomic writes data to a temp file next to path and renames it.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create temp file in %s", dir), err)
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", name), err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to chmod %s", name), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to close %s", name), err)
	}
	if err := os.Rename(name, path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to replace %s", path), err)
	}
	return nil
}
