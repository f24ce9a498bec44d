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

package defaults

import "time"

// Bootloader configuration file locations.
const (
	// GrubDefaultPath is the shell-style GRUB settings file.
	GrubDefaultPath = "/etc/default/grub"

	// GrubCfgPath is the boot menu generated by grub2-mkconfig.
	GrubCfgPath = "/boot/grub2/grub.cfg"

	// GrubEnvPath is the GRUB environment block holding saved_entry.
	GrubEnvPath = "/boot/grub2/grubenv"

	// PasswordScriptPath is the grub.d snippet carrying superuser credentials.
	PasswordScriptPath = "/etc/grub.d/42_password"

	// SysconfigBootloaderPath holds SECURE_BOOT and TRUSTED_BOOT.
	SysconfigBootloaderPath = "/etc/sysconfig/bootloader"

	// SysconfigLanguagePath holds RC_LANG used for menu regeneration.
	SysconfigLanguagePath = "/etc/sysconfig/language"

	// FstabPath lists configured swap devices.
	FstabPath = "/etc/fstab"
)

// Proposal defaults.
const (
	// ProposedTimeout is the menu timeout, in seconds, proposed when unset.
	ProposedTimeout = "8"

	// ProposedGfxmode is the graphics mode proposed when unset.
	ProposedGfxmode = "auto"

	// ProposedDefaultEntry always selects the last booted entry.
	ProposedDefaultEntry = "saved"

	// XenVGAMode is added to the Xen hypervisor line when a framebuffer exists.
	XenVGAMode = "gfx-1024x768x16"
)

// Collector timeouts for platform probing.
const (
	// ProbeTimeout is the default timeout for gathering platform facts.
	// Probes respect parent context deadlines when shorter.
	ProbeTimeout = 10 * time.Second
)

// Command timeouts for installer invocations.
const (
	// MkconfigTimeout bounds boot menu regeneration.
	MkconfigTimeout = 2 * time.Minute

	// InstallTimeout bounds a single grub2-install or shim-install run.
	InstallTimeout = 5 * time.Minute

	// PartedTimeout bounds a single PMBR flag update.
	PartedTimeout = 30 * time.Second

	// SetDefaultTimeout bounds grub2-set-default.
	SetDefaultTimeout = 30 * time.Second
)

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second
)

// OCI timeouts for registry operations.
const (
	// OCIPushTimeout bounds pushing an exported profile.
	OCIPushTimeout = 2 * time.Minute
)

// HTTP client settings for fetching remote profiles.
const (
	// HTTPClientTimeout bounds a whole profile download.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout bounds establishing the connection.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPMaxProfileSize caps the size of a downloaded profile.
	HTTPMaxProfileSize = 1 << 20
)

const (
	// ServerReadTimeout bounds reading a request on the node endpoint.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout bounds writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout closes idle keep-alive connections.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the graceful shutdown grace period.
	ServerShutdownTimeout = 30 * time.Second
)

const (
	// AgentJobTimeout bounds waiting for the node agent Job.
	AgentJobTimeout = 5 * time.Minute

	// AgentJobDeletionTimeout bounds waiting for a previous Job to go away.
	AgentJobDeletionTimeout = 30 * time.Second

	// AgentPollInterval is how often the agent's Job is polled.
	AgentPollInterval = 500 * time.Millisecond

	// AgentImage is the image the node agent Job runs.
	AgentImage = "ghcr.io/nvidia/bootcfg"
)

// ConfigPath is where bootcfg looks for its own settings.
const ConfigPath = "/etc/bootcfg/config.yaml"
