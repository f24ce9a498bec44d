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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/bootcfg/pkg/bootloader"
	"github.com/NVIDIA/bootcfg/pkg/device"
	"github.com/NVIDIA/bootcfg/pkg/defaults"
	apperrors "github.com/NVIDIA/bootcfg/pkg/errors"
	"github.com/NVIDIA/bootcfg/pkg/install"
	"github.com/NVIDIA/bootcfg/pkg/platform"
)

// maxConfigSize bounds the configuration file.
const maxConfigSize = 1 << 20

var validLevels = []string{"debug", "info", "warn", "warning", "error"}

// Install holds the defaults of the install command.
type Install struct {
	// Devices receive the boot record when none are given on the command line.
	Devices []string `yaml:"devices,omitempty"`
	// EFI forces the EFI target; nil means detect.
	EFI *bool `yaml:"efi,omitempty"`
	// PMBR is applied to the devices' disks before installing.
	PMBR string `yaml:"pmbr,omitempty"`
}

// Config is the bootcfg configuration file.
type Config struct {
	// Root resolves /proc, /sys, /dev and /etc below a chroot.
	Root string `yaml:"root"`
	// Arch overrides detection, as a uname machine string.
	Arch     string            `yaml:"arch,omitempty"`
	LogLevel string            `yaml:"logLevel"`
	Paths    bootloader.Paths  `yaml:"paths"`
	Features platform.Features `yaml:"features"`
	// DevicePreference orders the /dev/disk directories used for resume=.
	DevicePreference []string `yaml:"devicePreference"`
	Install          Install  `yaml:"install"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:             "/",
		LogLevel:         "info",
		Paths:            bootloader.DefaultPaths(),
		DevicePreference: append([]string(nil), device.DefaultPreference...),
	}
}

// ForRoot returns the defaults for a system mounted at root, with every
// bootloader file located below it.
func ForRoot(root string) *Config {
	c := Default()
	c.Root = root
	for _, p := range []*string{
		&c.Paths.Default, &c.Paths.Cfg, &c.Paths.Env, &c.Paths.PasswordScript,
		&c.Paths.SysconfigBootloader, &c.Paths.SysconfigLanguage,
	} {
		*p = filepath.Join(root, *p)
	}
	return c
}

// Marshal encodes c as a configuration file.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to encode configuration", err)
	}
	return data, nil
}

// Load reads path over the defaults. A missing file is a NOT_FOUND error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeNotFound, "configuration file not found", err,
				map[string]any{"path": path})
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to open configuration", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to read configuration", err)
	}
	if len(data) > maxConfigSize {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, "configuration file too large",
			map[string]any{"path": path})
	}
	return Parse(data)
}

// LoadOrDefault is Load, returning the defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return Default(), nil
	}
	return c, err
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid configuration", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	invalid := func(field, msg string) error {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest, msg, map[string]any{"field": field})
	}

	if c.LogLevel != "" && !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		return invalid("logLevel", fmt.Sprintf("log level must be one of %s", strings.Join(validLevels, ", ")))
	}
	if c.Arch != "" && platform.ParseArch(c.Arch) == platform.ArchUnknown {
		return invalid("arch", fmt.Sprintf("unknown architecture %q", c.Arch))
	}
	if c.Root != "" && !filepath.IsAbs(c.Root) {
		return invalid("root", "root must be an absolute path")
	}
	for field, p := range map[string]string{
		"paths.default":             c.Paths.Default,
		"paths.cfg":                 c.Paths.Cfg,
		"paths.env":                 c.Paths.Env,
		"paths.passwordScript":      c.Paths.PasswordScript,
		"paths.sysconfigBootloader": c.Paths.SysconfigBootloader,
		"paths.sysconfigLanguage":   c.Paths.SysconfigLanguage,
	} {
		if p == "" || !filepath.IsAbs(p) {
			return invalid(field, "path must be absolute")
		}
	}
	for _, d := range c.DevicePreference {
		if d == "" || strings.Contains(d, "/") {
			return invalid("devicePreference", fmt.Sprintf("invalid /dev/disk directory %q", d))
		}
	}
	if c.Install.PMBR != "" {
		if _, err := install.ParsePMBRAction(c.Install.PMBR); err != nil {
			return invalid("install.pmbr", err.Error())
		}
	}
	return nil
}

// ProberOptions returns the platform prober settings of c.
func (c *Config) ProberOptions() []platform.ProberOption {
	opts := []platform.ProberOption{
		platform.WithRoot(c.root()),
		platform.WithSysconfigPath(c.Paths.SysconfigBootloader),
		platform.WithFeatures(c.Features),
	}
	if c.Arch != "" {
		opts = append(opts, platform.WithArch(platform.ParseArch(c.Arch)))
	}
	return opts
}

// BootloaderOptions returns the Grub2 settings of c.
func (c *Config) BootloaderOptions() []bootloader.Option {
	opts := []bootloader.Option{bootloader.WithPaths(c.Paths)}
	if c.Arch != "" {
		opts = append(opts, bootloader.WithArch(platform.ParseArch(c.Arch)))
	}
	return opts
}

// Resolver returns a fresh device mapping session.
func (c *Config) Resolver() *device.Mapping {
	return device.NewMapping(device.WithRoot(c.root()), device.WithPreference(c.DevicePreference...))
}

// Swap returns the swap provider below Root.
func (c *Config) Swap() *platform.SystemSwap {
	s := platform.NewSystemSwap()
	s.Root = c.root()
	return s
}

func (c *Config) root() string {
	if c.Root == "" {
		return "/"
	}
	return c.Root
}

// DefaultPath is where the configuration is looked up when no --config is
// given.
func DefaultPath() string {
	return defaults.ConfigPath
}
