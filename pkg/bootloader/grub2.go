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
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/NVIDIA/bootcfg/pkg/defaults"
	"github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/grub"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"github.com/NVIDIA/bootcfg/pkg/locale"
	"github.com/NVIDIA/bootcfg/pkg/platform"
	"github.com/NVIDIA/bootcfg/pkg/serial"
	"github.com/joho/godotenv"
	"k8s.io/utils/ptr"
)

// Paths locates the files a Grub2 reads and writes.
type Paths struct {
	Default             string `json:"default" yaml:"default"`
	Cfg                 string `json:"cfg" yaml:"cfg"`
	Env                 string `json:"env" yaml:"env"`
	PasswordScript      string `json:"passwordScript" yaml:"passwordScript"`
	SysconfigBootloader string `json:"sysconfigBootloader" yaml:"sysconfigBootloader"`
	SysconfigLanguage   string `json:"sysconfigLanguage" yaml:"sysconfigLanguage"`
}

// DefaultPaths returns the standard locations.
func DefaultPaths() Paths {
	return Paths{
		Default:             defaults.GrubDefaultPath,
		Cfg:                 defaults.GrubCfgPath,
		Env:                 defaults.GrubEnvPath,
		PasswordScript:      defaults.PasswordScriptPath,
		SysconfigBootloader: defaults.SysconfigBootloaderPath,
		SysconfigLanguage:   defaults.SysconfigLanguagePath,
	}
}

// Sections is the generated boot menu and the entry booted by default.
type Sections struct {
	All     []grub.MenuEntry `json:"all,omitempty" yaml:"all,omitempty"`
	Default string           `json:"default,omitempty" yaml:"default,omitempty"`
}

// Names returns the selectable names of all entries.
func (s *Sections) Names() []string {
	res := make([]string, 0, len(s.All))
	for _, e := range s.All {
		res = append(res, e.Name())
	}
	return res
}

// Grub2 is one GRUB2 configuration session: the /etc/default/grub document
// plus the settings kept elsewhere (menu default, password, PMBR flag,
// secure and trusted boot).
//
// A Grub2 is not safe for concurrent use.
type Grub2 struct {
	Default  *grub.Default
	Sections *Sections
	// Password is nil when the menu is not protected.
	Password   *Password
	PMBRAction install.PMBRAction
	// TrustedBoot and SecureBoot are nil when undecided.
	TrustedBoot *bool
	SecureBoot  *bool

	console             *serial.Console
	explicitMitigations bool

	arch   platform.Arch
	paths  Paths
	runner install.Runner
	logger *slog.Logger
}

// Option configures a Grub2.
type Option func(*Grub2)

// WithPaths overrides file locations.
func WithPaths(p Paths) Option {
	return func(g *Grub2) {
		g.paths = p
	}
}

// WithRunner sets how external tools are executed.
func WithRunner(r install.Runner) Option {
	return func(g *Grub2) {
		g.runner = r
	}
}

// WithArch sets the architecture used to render console device names.
func WithArch(a platform.Arch) Option {
	return func(g *Grub2) {
		g.arch = a
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Grub2) {
		g.logger = l
	}
}

// New returns an empty configuration.
func New(opts ...Option) *Grub2 {
	g := &Grub2{
		Default:    grub.NewDefault(),
		Sections:   &Sections{},
		PMBRAction: install.PMBRNothing,
		arch:       platform.ParseArch(runtime.GOARCH),
		paths:      DefaultPaths(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.runner == nil {
		g.runner = install.NewExecRunner()
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Paths returns the file locations in use.
func (g *Grub2) Paths() Paths { return g.paths }

// Read loads the system configuration. A missing /etc/default/grub is a
// broken configuration; a missing grub.cfg yields an empty menu.
func (g *Grub2) Read(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d, err := grub.Load(g.paths.Default)
	if err != nil {
		readTotal.WithLabelValues("failure").Inc()
		return err
	}
	g.Default = d
	g.console = serial.FromKernelParams(d.KernelParams)
	g.explicitMitigations = false
	g.PMBRAction = install.PMBRNothing

	g.Sections = &Sections{}
	entries, err := grub.LoadMenu(g.paths.Cfg)
	switch {
	case err == nil:
		g.Sections.All = entries
	case errors.IsCode(err, errors.ErrCodeNotFound):
		g.logger.Info("boot menu is missing, defaulting to an empty one", slog.String("path", g.paths.Cfg))
	default:
		readTotal.WithLabelValues("failure").Inc()
		return err
	}
	env, err := grub.ReadEnv(g.paths.Env)
	if err != nil {
		readTotal.WithLabelValues("failure").Inc()
		return err
	}
	g.Sections.Default = env[grub.SavedEntryKey]
	g.logger.Debug("grub sections", slog.Any("sections", g.Sections.Names()))

	if g.Password, err = ReadPassword(g.paths.PasswordScript); err != nil {
		readTotal.WithLabelValues("failure").Inc()
		return err
	}

	secure, trusted, err := platform.ReadBootState(g.paths.SysconfigBootloader, g.arch)
	if err != nil {
		g.logger.Debug("bootloader sysconfig not readable", slog.String("error", err.Error()))
	}
	g.SecureBoot, g.TrustedBoot = ptr.To(secure), ptr.To(trusted)

	readTotal.WithLabelValues("success").Inc()
	return nil
}

// Write persists the configuration and regenerates the boot menu.
func (g *Grub2) Write(ctx context.Context) error {
	err := g.write(ctx)
	result := "success"
	if err != nil {
		result = "failure"
	}
	writeTotal.WithLabelValues(result).Inc()
	return err
}

func (g *Grub2) write(ctx context.Context) error {
	g.logger.Info("writing grub defaults", slog.String("path", g.paths.Default))
	if err := g.Default.Save(g.paths.Default); err != nil {
		return err
	}
	if g.Sections != nil && g.Sections.Default != "" {
		if err := g.runner.Run(ctx, install.SetDefault(g.Sections.Default)); err != nil {
			return err
		}
	}
	if err := WritePassword(g.paths.PasswordScript, g.Password); err != nil {
		return err
	}
	if err := g.writeBootState(); err != nil {
		return err
	}

	lang, err := locale.Load(g.paths.SysconfigLanguage)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to read system language", err)
	}
	set, unset := lang.Overrides()
	g.logger.Info("regenerating boot menu", slog.String("lang", lang.Lang()))
	return g.runner.Run(ctx, install.Mkconfig(g.paths.Cfg, set, unset))
}

// writeBootState records decided secure and trusted boot flags in the
// bootloader sysconfig, keeping its other keys.
func (g *Grub2) writeBootState() error {
	if g.SecureBoot == nil && g.TrustedBoot == nil {
		return nil
	}
	env, err := godotenv.Read(g.paths.SysconfigBootloader)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeInternal, "failed to read bootloader sysconfig", err)
		}
		env = map[string]string{}
	}
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}
	if g.SecureBoot != nil {
		env["SECURE_BOOT"] = yesNo(*g.SecureBoot)
	}
	if g.TrustedBoot != nil {
		env["TRUSTED_BOOT"] = yesNo(*g.TrustedBoot)
	}
	text, err := godotenv.Marshal(env)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to render bootloader sysconfig", err)
	}
	return grub.WriteFileAtomic(g.paths.SysconfigBootloader, []byte(text+"\n"), 0o644)
}

// Install sets the PMBR flag on disks and installs GRUB to devices.
func (g *Grub2) Install(ctx context.Context, gi install.GrubInstall, disks, devices []string) error {
	if err := install.RunAll(ctx, g.runner, install.PMBR(g.PMBRAction, disks)); err != nil {
		return err
	}
	cmds, err := gi.Commands(devices, ptr.Deref(g.SecureBoot, false), ptr.Deref(g.TrustedBoot, false))
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnsupportedPlatform, "cannot install GRUB", err,
			map[string]any{"arch": string(gi.Arch), "efi": gi.EFI})
	}
	if len(cmds) == 0 {
		g.logger.Info("no boot devices given, skipping GRUB installation")
	}
	return install.RunAll(ctx, g.runner, cmds)
}

// EnableSerialConsole configures GRUB and the kernel to use the serial line
// described by args ("serial --unit=0 --speed=115200 ...").
func (g *Grub2) EnableSerialConsole(args string) error {
	c, err := serial.FromConsoleArgs(args)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidSerialConsole, "invalid serial console arguments", err,
			map[string]any{"args": args})
	}
	g.console = c
	g.Default.SerialConsole = ptr.To(c.ConsoleArgs())
	g.Default.KernelParams.AddParameter("console", c.KernelArgs(g.arch), kernel.ReplacePlacer{Matcher: serial.Matcher})
	return nil
}

// DisableSerialConsole removes serial console settings.
func (g *Grub2) DisableSerialConsole() {
	g.console = nil
	g.Default.KernelParams.RemoveParameter(serial.Matcher)
	g.Default.SerialConsole = ptr.To("")
}

// SerialConsole returns the active serial console, nil when none.
func (g *Grub2) SerialConsole() *serial.Console {
	return g.console
}

// CPUMitigations returns the policy on the kernel line.
func (g *Grub2) CPUMitigations() grub.CPUMitigations {
	return grub.MitigationsFromKernelParams(g.Default.KernelParams)
}

// ExplicitCPUMitigations returns the policy only when it was set through
// SetCPUMitigations in this session.
func (g *Grub2) ExplicitCPUMitigations() (grub.CPUMitigations, bool) {
	if !g.explicitMitigations {
		return "", false
	}
	return g.CPUMitigations(), true
}

// SetCPUMitigations rewrites the mitigations token and marks the policy as
// explicitly chosen.
func (g *Grub2) SetCPUMitigations(m grub.CPUMitigations) error {
	if err := m.Modify(g.Default.KernelParams); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "cannot set CPU mitigations", err)
	}
	g.logger.Info("setting CPU mitigations", slog.String("value", m.String()))
	g.explicitMitigations = true
	return nil
}

// Summary is a short human readable description.
func (g *Grub2) Summary() []string {
	onOff := func(b *bool) string {
		switch {
		case b == nil:
			return "undecided"
		case *b:
			return "enabled"
		default:
			return "disabled"
		}
	}
	res := []string{
		fmt.Sprintf("Kernel parameters: %s", g.Default.KernelParams.Serialize()),
		fmt.Sprintf("CPU mitigations: %s", g.CPUMitigations()),
		fmt.Sprintf("Timeout: %s", ptr.Deref(g.Default.Timeout, "unset")),
		fmt.Sprintf("Secure boot: %s", onOff(g.SecureBoot)),
		fmt.Sprintf("Trusted boot: %s", onOff(g.TrustedBoot)),
		fmt.Sprintf("Password protection: %s", onOff(ptr.To(g.Password != nil))),
	}
	if g.console != nil {
		res = append(res, fmt.Sprintf("Serial console: %s", g.console.ConsoleArgs()))
	}
	if g.Sections != nil && g.Sections.Default != "" {
		res = append(res, fmt.Sprintf("Default entry: %s", g.Sections.Default))
	}
	return res
}
