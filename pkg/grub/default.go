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
	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"k8s.io/utils/ptr"
)

// Keys of /etc/default/grub modelled as first-class fields.
const (
	KeyKernelParams        = "GRUB_CMDLINE_LINUX_DEFAULT"
	KeyXenHypervisorParams = "GRUB_CMDLINE_XEN_DEFAULT"
	KeyXenKernelParams     = "GRUB_CMDLINE_LINUX_XEN_REPLACE_DEFAULT"
	KeyTimeout             = "GRUB_TIMEOUT"
	KeyHiddenTimeout       = "GRUB_HIDDEN_TIMEOUT"
	KeyDistributor         = "GRUB_DISTRIBUTOR"
	KeyGfxmode             = "GRUB_GFXMODE"
	KeyTheme               = "GRUB_THEME"
	KeyDefaultEntry        = "GRUB_DEFAULT"
	KeySerialCommand       = "GRUB_SERIAL_COMMAND"
	KeyTerminal            = "GRUB_TERMINAL"
	KeyDisableOSProber     = "GRUB_DISABLE_OS_PROBER"
	KeyEnableCryptodisk    = "GRUB_ENABLE_CRYPTODISK"
	KeyDisableRecovery     = "GRUB_DISABLE_RECOVERY"
)

// Generic keys with a known meaning.
const (
	KeySnapshotBooting = "SUSE_BTRFS_SNAPSHOT_BOOTING"
	KeyGfxpayloadLinux = "GRUB_GFXPAYLOAD_LINUX"
	KeyUseLinuxEFI     = "GRUB_USE_LINUXEFI"
)

// Default is the in-memory form of /etc/default/grub.
//
// Optional strings are nil when unset; ptr.To("") is an explicit empty value.
// The three kernel lines are always present, possibly empty.
type Default struct {
	KernelParams        *kernel.List
	XenHypervisorParams *kernel.List
	XenKernelParams     *kernel.List

	Timeout       *string
	HiddenTimeout *string
	Distributor   *string
	Gfxmode       *string
	Theme         *string
	DefaultEntry  *string
	SerialConsole *string

	OSProber      Boolean
	Cryptodisk    Boolean
	RecoveryEntry Boolean

	Generic *Generic

	terminal *string
}

// NewDefault returns a document with every setting unset.
func NewDefault() *Default {
	return &Default{
		KernelParams:        &kernel.List{},
		XenHypervisorParams: &kernel.List{},
		XenKernelParams:     &kernel.List{},
		Generic:             NewGeneric(),
	}
}

// TerminalDefined reports whether GRUB_TERMINAL is set at all.
func (d *Default) TerminalDefined() bool {
	return d.terminal != nil
}

// TerminalTypes returns the configured terminals. It returns nil, nil when
// unset and ErrUnknownTerminal when the value holds a type bootcfg does not
// model.
func (d *Default) TerminalTypes() ([]Terminal, error) {
	if d.terminal == nil {
		return nil, nil
	}
	return ParseTerminals(*d.terminal)
}

// SetTerminal replaces the terminal set. No arguments means an explicit
// empty value.
func (d *Default) SetTerminal(ts ...Terminal) {
	d.terminal = ptr.To(FormatTerminals(ts))
}

// RawTerminal returns GRUB_TERMINAL verbatim, nil when unset.
func (d *Default) RawTerminal() *string {
	if d.terminal == nil {
		return nil
	}
	return ptr.To(*d.terminal)
}

// SetRawTerminal stores GRUB_TERMINAL verbatim. Nil unsets it.
func (d *Default) SetRawTerminal(v *string) {
	if v == nil {
		d.terminal = nil
		return
	}
	d.terminal = ptr.To(*v)
}

// Clone returns an independent deep copy.
func (d *Default) Clone() *Default {
	c := *d
	c.KernelParams = d.KernelParams.Clone()
	c.XenHypervisorParams = d.XenHypervisorParams.Clone()
	c.XenKernelParams = d.XenKernelParams.Clone()
	for _, f := range []**string{&c.Timeout, &c.HiddenTimeout, &c.Distributor, &c.Gfxmode,
		&c.Theme, &c.DefaultEntry, &c.SerialConsole, &c.terminal} {
		if *f != nil {
			*f = ptr.To(**f)
		}
	}
	c.Generic = d.Generic.Clone()
	return &c
}

// Lists returns the three kernel lines keyed by their file key.
func (d *Default) Lists() map[string]*kernel.List {
	return map[string]*kernel.List{
		KeyKernelParams:        d.KernelParams,
		KeyXenHypervisorParams: d.XenHypervisorParams,
		KeyXenKernelParams:     d.XenKernelParams,
	}
}

func (d *Default) stringFields() []stringField {
	return []stringField{
		{KeyTimeout, &d.Timeout},
		{KeyHiddenTimeout, &d.HiddenTimeout},
		{KeyDistributor, &d.Distributor},
		{KeyGfxmode, &d.Gfxmode},
		{KeyTheme, &d.Theme},
		{KeyDefaultEntry, &d.DefaultEntry},
		{KeySerialCommand, &d.SerialConsole},
		{KeyTerminal, &d.terminal},
	}
}

type stringField struct {
	key   string
	value **string
}
