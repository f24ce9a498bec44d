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

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/sysfile"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// Prober gathers Facts from /proc, /sys, /dev and /etc/sysconfig.
type Prober struct {
	root          string
	sysconfigPath string
	arch          Arch
	features      Features
	logger        *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithRoot resolves every probed path below root. Used for chroots and tests.
func WithRoot(root string) ProberOption {
	return func(p *Prober) {
		p.root = root
	}
}

// WithSysconfigPath overrides the location of the bootloader sysconfig file.
func WithSysconfigPath(path string) ProberOption {
	return func(p *Prober) {
		p.sysconfigPath = path
	}
}

// WithArch skips architecture detection.
func WithArch(a Arch) ProberOption {
	return func(p *Prober) {
		p.arch = a
	}
}

// WithFeatures sets the product feature switches copied into Facts.
func WithFeatures(f Features) ProberOption {
	return func(p *Prober) {
		p.features = f
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = l
	}
}

// NewProber returns a Prober for the running system.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		root:          "/",
		sysconfigPath: defaults.SysconfigBootloaderPath,
		arch:          ParseArch(runtime.GOARCH),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

func (p *Prober) path(elem ...string) string {
	return filepath.Join(append([]string{p.root}, elem...)...)
}

func (p *Prober) exists(elem ...string) bool {
	_, err := os.Stat(p.path(elem...))
	return err == nil
}

func (p *Prober) anyMatch(pattern ...string) bool {
	m, err := filepath.Glob(p.path(pattern...))
	return err == nil && len(m) > 0
}

// Probe collects all facts concurrently. Unreadable optional sources leave
// their facts false; only the kernel command line is required.
func (p *Prober) Probe(ctx context.Context) (*Facts, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.ProbeTimeout)
	defer cancel()

	facts := &Facts{Arch: p.arch, Features: p.features}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := os.ReadFile(p.path("proc", "cmdline"))
		if err != nil {
			return fmt.Errorf("failed to read kernel command line: %w", err)
		}
		cmdline := FilterCmdline(strings.TrimSpace(string(b)))
		mu.Lock()
		facts.KernelCmdline = cmdline
		mu.Unlock()
		return ctx.Err()
	})

	g.Go(func() error {
		efi := p.exists("sys", "firmware", "efi")
		vars := p.anyMatch("sys", "firmware", "efi", "efivars", "*")
		writable := p.efivarfsWritable()
		mu.Lock()
		facts.EFI, facts.EFIVarsPresent, facts.EFIVarsWritable = efi, vars, writable
		mu.Unlock()
		return ctx.Err()
	})

	g.Go(func() error {
		fb := p.anyMatch("dev", "fb*")
		tpm := p.exists("dev", "tpm0")
		hasSecure := p.s390HasSecure()
		resume := p.resumeAvailable()
		mu.Lock()
		facts.Framebuffer, facts.TPMPresent, facts.S390HasSecure = fb, tpm, hasSecure
		facts.ResumeAvailable = resume
		mu.Unlock()
		return ctx.Err()
	})

	g.Go(func() error {
		encrypted := p.bootEncrypted()
		mu.Lock()
		facts.EncryptedBoot = encrypted
		mu.Unlock()
		return ctx.Err()
	})

	g.Go(func() error {
		secure, trusted := p.sysconfigBootState()
		mu.Lock()
		facts.SecureBootActive, facts.TrustedBootActive = secure, trusted
		mu.Unlock()
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("platform probed",
		slog.String("arch", string(facts.Arch)),
		slog.Bool("efi", facts.EFI),
		slog.Bool("framebuffer", facts.Framebuffer),
		slog.Bool("encrypted_boot", facts.EncryptedBoot),
		slog.Bool("secure_boot", facts.SecureBootActive))

	return facts, nil
}

func (p *Prober) efivarfsWritable() bool {
	mounts, err := sysfile.NewParser(sysfile.WithFields()).GetFields(p.path("proc", "mounts"))
	if err != nil {
		return false
	}
	for _, m := range mounts {
		if len(m) < 4 || m[2] != "efivarfs" {
			continue
		}
		for _, opt := range strings.Split(m[3], ",") {
			if opt == "rw" {
				return true
			}
		}
	}
	return false
}

func (p *Prober) s390HasSecure() bool {
	if p.arch != ArchS390 {
		return false
	}
	b, err := os.ReadFile(p.path("sys", "firmware", "ipl", "has_secure"))
	return err == nil && strings.HasPrefix(string(b), "1")
}

func (p *Prober) resumeAvailable() bool {
	if p.arch == ArchS390 {
		return false
	}
	b, err := os.ReadFile(p.path("sys", "power", "state"))
	return err == nil && strings.Contains(string(b), "disk")
}

// bootEncrypted reports whether /boot, or / when /boot is not separate,
// lives on a dm-crypt device or on a device stacked over one (LVM on LUKS).
func (p *Prober) bootEncrypted() bool {
	mounts, err := sysfile.NewParser(sysfile.WithFields()).GetFields(p.path("proc", "mounts"))
	if err != nil {
		return false
	}
	var dev string
	for _, m := range mounts {
		if len(m) < 2 {
			continue
		}
		switch m[1] {
		case "/boot":
			dev = m[0]
		case "/":
			if dev == "" {
				dev = m[0]
			}
		}
	}
	if !strings.HasPrefix(dev, "/dev/") {
		return false
	}
	resolved, err := filepath.EvalSymlinks(p.path(dev))
	if err != nil {
		return false
	}
	name := filepath.Base(resolved)
	if !strings.HasPrefix(name, "dm-") {
		return false
	}
	return p.cryptBacked(name, map[string]bool{})
}

// cryptBacked walks the dm slaves of name looking for a CRYPT- target.
func (p *Prober) cryptBacked(name string, seen map[string]bool) bool {
	if seen[name] {
		return false
	}
	seen[name] = true
	uuid, err := os.ReadFile(p.path("sys", "block", name, "dm", "uuid"))
	if err != nil {
		return false
	}
	if strings.HasPrefix(string(uuid), "CRYPT-") {
		return true
	}
	slaves, err := os.ReadDir(p.path("sys", "block", name, "slaves"))
	if err != nil {
		return false
	}
	for _, s := range slaves {
		if p.cryptBacked(s.Name(), seen) {
			return true
		}
	}
	return false
}

func (p *Prober) sysconfigBootState() (secure, trusted bool) {
	secure, trusted, err := ReadBootState(p.path(p.sysconfigPath), p.arch)
	if err != nil {
		p.logger.Debug("bootloader sysconfig not readable", slog.String("error", err.Error()))
	}
	return secure, trusted
}

// ReadBootState reads SECURE_BOOT and TRUSTED_BOOT from the bootloader
// sysconfig file at path. Secure boot is never active on s390.
func ReadBootState(path string, arch Arch) (secure, trusted bool, err error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return false, false, err
	}
	secure = strings.EqualFold(env["SECURE_BOOT"], "yes") && arch != ArchS390
	trusted = strings.EqualFold(env["TRUSTED_BOOT"], "yes")
	return secure, trusted, nil
}
