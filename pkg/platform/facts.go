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

// Features are product switches that influence proposals.
type Features struct {
	// DisableOSProber turns os-prober off regardless of architecture.
	DisableOSProber bool `json:"disableOSProber,omitempty" yaml:"disableOSProber,omitempty"`
}

// Facts describe the machine bootcfg is configuring.
type Facts struct {
	Arch Arch `json:"arch" yaml:"arch"`

	// EFI is true when the system booted through UEFI.
	EFI bool `json:"efi" yaml:"efi"`
	// EFIVarsPresent is true when firmware variables are exposed.
	EFIVarsPresent bool `json:"efiVarsPresent" yaml:"efiVarsPresent"`
	// EFIVarsWritable is true when efivarfs is mounted read-write.
	EFIVarsWritable bool `json:"efiVarsWritable" yaml:"efiVarsWritable"`

	Framebuffer     bool `json:"framebuffer" yaml:"framebuffer"`
	ResumeAvailable bool `json:"resumeAvailable" yaml:"resumeAvailable"`
	EncryptedBoot   bool `json:"encryptedBoot" yaml:"encryptedBoot"`

	SecureBootActive  bool `json:"secureBootActive" yaml:"secureBootActive"`
	TrustedBootActive bool `json:"trustedBootActive" yaml:"trustedBootActive"`
	TPMPresent        bool `json:"tpmPresent" yaml:"tpmPresent"`
	S390HasSecure     bool `json:"s390HasSecure,omitempty" yaml:"s390HasSecure,omitempty"`

	// KernelCmdline is the running kernel's command line with boot specific
	// tokens removed. It seeds the proposed default kernel line.
	KernelCmdline string `json:"kernelCmdline" yaml:"kernelCmdline"`

	Features Features `json:"features" yaml:"features"`
}

// Loader names the GRUB flavor in use.
func (f *Facts) Loader() string {
	if f.EFI {
		return "grub2-efi"
	}
	return "grub2"
}

// EFISupported reports whether the architecture has a UEFI GRUB target.
func (f *Facts) EFISupported() bool {
	return f.Arch == ArchX86_64 || f.Arch == ArchI386 || f.Arch == ArchAarch64
}

// SecureBootAvailable reports whether secure boot can be configured.
func (f *Facts) SecureBootAvailable() bool {
	if f.EFI {
		return f.Arch == ArchX86_64 || f.Arch == ArchAarch64
	}
	return f.S390SecureBootAvailable()
}

// S390SecureBootAvailable reports whether the s390 IPL firmware can verify
// signed boot records.
func (f *Facts) S390SecureBootAvailable() bool {
	return f.Arch == ArchS390 && f.S390HasSecure
}

// TrustedBootAvailable reports whether measured boot can be configured.
// With UEFI it needs a TPM; legacy boot supports it on x86 only.
func (f *Facts) TrustedBootAvailable() bool {
	if f.EFI {
		return f.TPMPresent
	}
	return f.Arch.IsX86()
}

// ShimNeeded reports whether secure boot goes through shim.
func (f *Facts) ShimNeeded(secureBoot bool) bool {
	return secureBoot && f.EFI && f.Arch == ArchX86_64
}

// WritableEFIVars reports whether boot entries can be stored in NVRAM.
func (f *Facts) WritableEFIVars() bool {
	return f.EFIVarsPresent && f.EFIVarsWritable
}
