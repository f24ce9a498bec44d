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

package bootloader

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/grub"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters matching grub2-mkpasswd-pbkdf2.
const (
	pbkdf2Iterations = 10000
	pbkdf2SaltLen    = 64
	pbkdf2KeyLen     = 64
)

const superuser = "root"

var (
	passwordLine     = regexp.MustCompile(`^\s*password_pbkdf2\s+\S+\s+(grub\.pbkdf2\.\S+)`)
	unrestrictedLine = regexp.MustCompile(`^\s*set\s+unrestricted_menu\s*=\s*"?y"?`)
)

// Password protects the boot menu. A nil *Password means no protection.
type Password struct {
	// Encrypted is a grub.pbkdf2.sha512 hash.
	Encrypted string `json:"encrypted" yaml:"encrypted"`
	// Unrestricted lets anyone boot the default entries; the password is
	// then only needed to edit entries or use the command line.
	Unrestricted bool `json:"unrestricted" yaml:"unrestricted"`
}

// NewPassword hashes plain with a fresh salt.
func NewPassword(plain string, unrestricted bool) (*Password, error) {
	if plain == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "password must not be empty")
	}
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate salt", err)
	}
	return &Password{Encrypted: hashPassword(plain, salt, pbkdf2Iterations), Unrestricted: unrestricted}, nil
}

func hashPassword(plain string, salt []byte, iterations int) string {
	key := pbkdf2.Key([]byte(plain), salt, iterations, pbkdf2KeyLen, sha512.New)
	return fmt.Sprintf("grub.pbkdf2.sha512.%d.%s.%s", iterations,
		strings.ToUpper(hex.EncodeToString(salt)), strings.ToUpper(hex.EncodeToString(key)))
}

// Verify reports whether plain matches the stored hash.
func (p *Password) Verify(plain string) bool {
	if p == nil {
		return false
	}
	parts := strings.Split(p.Encrypted, ".")
	if len(parts) != 6 || parts[0] != "grub" || parts[1] != "pbkdf2" || parts[2] != "sha512" {
		return false
	}
	iter, err := strconv.Atoi(parts[3])
	if err != nil || iter <= 0 {
		return false
	}
	salt, err := hex.DecodeString(parts[4])
	if err != nil {
		return false
	}
	return hashPassword(plain, salt, iter) == p.Encrypted
}

// Clone returns a copy, nil for nil.
func (p *Password) Clone() *Password {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Script renders the grub.d snippet installing the superuser. The leading
// exec makes grub2-mkconfig copy everything after line two verbatim.
func (p *Password) Script() string {
	var sb strings.Builder
	sb.WriteString("#! /bin/sh\nexec tail -n +3 $0\n")
	sb.WriteString("# File generated by bootcfg, manual changes will be overwritten\n")
	fmt.Fprintf(&sb, "set superusers=%q\n", superuser)
	fmt.Fprintf(&sb, "password_pbkdf2 %s %s\n", superuser, p.Encrypted)
	sb.WriteString("export superusers\n")
	if p.Unrestricted {
		sb.WriteString("set unrestricted_menu=\"y\"\nexport unrestricted_menu\n")
	}
	return sb.String()
}

// ReadPassword parses a script written by Script. A missing script means
// no password.
func ReadPassword(path string) (*Password, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read %s", path), err)
	}
	var p Password
	for _, line := range strings.Split(string(b), "\n") {
		if m := passwordLine.FindStringSubmatch(line); m != nil {
			p.Encrypted = m[1]
		}
		if unrestrictedLine.MatchString(line) {
			p.Unrestricted = true
		}
	}
	if p.Encrypted == "" {
		return nil, nil
	}
	return &p, nil
}

// WritePassword installs or removes the password script.
func WritePassword(path string, p *Password) error {
	if p == nil {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to remove %s", path), err)
		}
		return nil
	}
	return grub.WriteFileAtomic(path, []byte(p.Script()), 0o700)
}
