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
	"context"
	"log/slog"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/device"
	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"github.com/NVIDIA/bootcfg/pkg/platform"
	"github.com/NVIDIA/bootcfg/pkg/serial"
	"k8s.io/utils/ptr"
)

// Proposer carries the collaborators a proposal consults.
type Proposer struct {
	Facts *platform.Facts
	// Swap is optional; without it no resume device is proposed.
	Swap platform.SwapProvider
	// Resolver is optional; without it kernel device names are used as is.
	Resolver device.Resolver
}

var vgaMatcher = kernel.Matcher{Key: "vga"}

// Propose fills undecided settings with defaults suited to the platform.
// Settings already decided are kept except where the platform dictates
// them: cryptodisk, the default entry, snapshot booting, the serial console
// and the boot flags are always recomputed.
func (g *Grub2) Propose(ctx context.Context, p *Proposer) error {
	if p == nil || p.Facts == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "platform facts are required to propose a configuration")
	}
	f := p.Facts
	d := g.Default
	g.arch = f.Arch

	if !d.OSProber.Defined() {
		d.OSProber.Set(!f.Arch.Restricted() && !f.Features.DisableOSProber)
	}

	g.proposeTerminal(f.Arch)

	if d.Timeout == nil {
		d.Timeout = ptr.To(defaults.ProposedTimeout)
	}

	d.Cryptodisk.Set(f.EncryptedBoot)

	if d.KernelParams.Empty() {
		resume, err := proposeResume(ctx, p)
		if err != nil {
			return err
		}
		line := platform.DefaultKernelParams(f, resume)
		if err := d.KernelParams.Replace(line); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal, "invalid default kernel command line", err,
				map[string]any{"line": line})
		}
	}

	if d.Gfxmode == nil {
		d.Gfxmode = ptr.To(defaults.ProposedGfxmode)
	}
	if !d.RecoveryEntry.Defined() {
		d.RecoveryEntry.Disable()
	}
	if d.Distributor == nil {
		d.Distributor = ptr.To("")
	}
	d.DefaultEntry = ptr.To(defaults.ProposedDefaultEntry)
	d.Generic.Set(grub.KeySnapshotBooting, "true")

	g.proposeSerial(f.Arch)

	if g.console == nil && f.Framebuffer {
		d.XenHypervisorParams.AddParameter("vga", defaults.XenVGAMode, kernel.ReplacePlacer{Matcher: vgaMatcher})
	}

	g.TrustedBoot = ptr.To(false)
	g.SecureBoot = ptr.To(f.SecureBootActive)

	proposeTotal.Inc()
	kernelParamsGauge.Set(float64(d.KernelParams.Len()))
	g.logger.Debug("proposed configuration",
		slog.String("arch", string(f.Arch)),
		slog.String("kernel", d.KernelParams.Serialize()))
	return nil
}

func (g *Grub2) proposeTerminal(arch platform.Arch) {
	d := g.Default
	if d.TerminalDefined() {
		if _, err := d.TerminalTypes(); err == nil {
			return
		}
		g.logger.Warn("unknown terminal configured, proposing a new one",
			slog.String("terminal", ptr.Deref(d.RawTerminal(), "")))
	}
	switch arch {
	case platform.ArchS390:
		d.SetTerminal(grub.TerminalConsole)
	case platform.ArchPPC:
		d.SetTerminal(grub.TerminalConsole)
		d.Generic.Set(grub.KeyGfxpayloadLinux, "text")
	default:
		d.SetTerminal(grub.TerminalGfxterm)
	}
}

// proposeSerial derives the serial console from the kernel line.
func (g *Grub2) proposeSerial(arch platform.Arch) {
	d := g.Default
	g.console = serial.FromKernelParams(d.KernelParams)
	if g.console == nil {
		return
	}
	d.SerialConsole = ptr.To(g.console.ConsoleArgs())
	if !arch.XenCapable() {
		return
	}
	// Both lines are derived from the console and carry nothing else.
	_ = d.XenHypervisorParams.Replace(g.console.XenHypervisorArgs())
	_ = d.XenKernelParams.Replace(g.console.XenKernelArgs())
}

// proposeResume returns the stable name of the largest swap partition, or
// "" when resume is unavailable or there is no swap.
func proposeResume(ctx context.Context, p *Proposer) (string, error) {
	if !p.Facts.ResumeAvailable || p.Swap == nil {
		return "", nil
	}
	parts, err := p.Swap.SwapPartitions(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to list swap partitions", err)
	}
	dev := platform.LargestSwap(parts)
	if dev == "" || p.Resolver == nil {
		return dev, nil
	}
	name, err := p.Resolver.ToMountBy(dev)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeUnknownDevice, "failed to resolve resume device", err,
			map[string]any{"device": dev})
	}
	return name, nil
}
