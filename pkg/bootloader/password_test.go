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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPassword(t *testing.T) {
	p, err := NewPassword("secret", false)
	require.NoError(t, err)

	parts := strings.Split(p.Encrypted, ".")
	require.Len(t, parts, 6)
	assert.Equal(t, []string{"grub", "pbkdf2", "sha512", "10000"}, parts[:4])
	assert.Len(t, parts[4], pbkdf2SaltLen*2)
	assert.Len(t, parts[5], pbkdf2KeyLen*2)
	assert.Equal(t, strings.ToUpper(parts[5]), parts[5])

	assert.True(t, p.Verify("secret"))
	assert.False(t, p.Verify("Secret"))

	other, err := NewPassword("secret", false)
	require.NoError(t, err)
	assert.NotEqual(t, p.Encrypted, other.Encrypted, "salt is random")
}

func TestNewPassword_Empty(t *testing.T) {
	_, err := NewPassword("", false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestPasswordVerify_Malformed(t *testing.T) {
	for _, enc := range []string{"", "plain", "grub.pbkdf2.sha512.x.AA.BB", "grub.pbkdf2.sha512.10000.ZZ.BB"} {
		assert.False(t, (&Password{Encrypted: enc}).Verify("secret"), enc)
	}
	var nilPw *Password
	assert.False(t, nilPw.Verify("secret"))
}

func TestPasswordScript(t *testing.T) {
	p := &Password{Encrypted: "grub.pbkdf2.sha512.10000.AA.BB"}
	s := p.Script()
	assert.True(t, strings.HasPrefix(s, "#! /bin/sh\nexec tail -n +3 $0\n"))
	assert.Contains(t, s, "set superusers=\"root\"\n")
	assert.Contains(t, s, "password_pbkdf2 root grub.pbkdf2.sha512.10000.AA.BB\n")
	assert.NotContains(t, s, "unrestricted_menu")

	p.Unrestricted = true
	assert.Contains(t, p.Script(), "set unrestricted_menu=\"y\"\nexport unrestricted_menu\n")
}

func TestPasswordReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "42_password")

	got, err := ReadPassword(path)
	require.NoError(t, err)
	assert.Nil(t, got)

	p := &Password{Encrypted: "grub.pbkdf2.sha512.10000.AA.BB", Unrestricted: true}
	require.NoError(t, WritePassword(path, p))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	got, err = ReadPassword(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, WritePassword(path, nil))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, WritePassword(path, nil), "removing twice is fine")
}

func TestReadPassword_NoHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "42_password")
	require.NoError(t, os.WriteFile(path, []byte("#! /bin/sh\nexec tail -n +3 $0\n"), 0o700))

	got, err := ReadPassword(path)
	require.NoError(t, err)
	assert.Nil(t, got)
}
