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

package serial

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/NVIDIA/bootcfg/pkg/kernel"
	"github.com/NVIDIA/bootcfg/pkg/platform"
)

// ErrInvalidArguments is returned when a GRUB serial command cannot be parsed.
var ErrInvalidArguments = errors.New("invalid serial console arguments")

// Defaults for settings missing from the arguments.
const (
	DefaultSpeed  = 9600
	DefaultParity = ParityNone
	DefaultWord   = 8
)

// Parity of the serial line.
type Parity string

const (
	ParityNone Parity = "no"
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

func (p Parity) short() string {
	if p == "" {
		return "n"
	}
	return string(p)[:1]
}

var parityByShort = map[string]Parity{"n": ParityNone, "o": ParityOdd, "e": ParityEven}

// Matcher selects serial console= tokens on a kernel command line.
var Matcher = kernel.Matcher{Key: "console", ValueMatcher: regexp.MustCompile(`tty(S|AMA)`)}

var kernelConsole = regexp.MustCompile(`^tty(?:S|AMA)(\d+)(?:,(\d*)([noe])?(\d)?)?`)

// Console describes a serial console line.
type Console struct {
	Unit   int    `json:"unit" yaml:"unit"`
	Speed  int    `json:"speed" yaml:"speed"`
	Parity Parity `json:"parity" yaml:"parity"`
	Word   int    `json:"word" yaml:"word"`
}

// New returns a console on unit with default line settings.
func New(unit int) *Console {
	return &Console{Unit: unit, Speed: DefaultSpeed, Parity: DefaultParity, Word: DefaultWord}
}

// FromConsoleArgs parses the GRUB syntax
// "serial --unit=N [--speed=B] [--parity=P] [--word=W]".
func FromConsoleArgs(args string) (*Console, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || fields[0] != "serial" {
		return nil, fmt.Errorf("%w: %q does not start with serial", ErrInvalidArguments, args)
	}

	opts := make(map[string]string, len(fields)-1)
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(strings.TrimPrefix(f, "--"), "=")
		if !ok {
			continue
		}
		opts[k] = v
	}

	unit, ok := opts["unit"]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no --unit", ErrInvalidArguments, args)
	}
	c := &Console{Speed: DefaultSpeed, Parity: DefaultParity, Word: DefaultWord}

	var err error
	if c.Unit, err = strconv.Atoi(unit); err != nil || c.Unit < 0 {
		return nil, fmt.Errorf("%w: bad unit %q", ErrInvalidArguments, unit)
	}
	if v, ok := opts["speed"]; ok {
		if c.Speed, err = strconv.Atoi(v); err != nil || c.Speed <= 0 {
			return nil, fmt.Errorf("%w: bad speed %q", ErrInvalidArguments, v)
		}
	}
	if v, ok := opts["parity"]; ok {
		switch p := Parity(v); p {
		case ParityNone, ParityOdd, ParityEven:
			c.Parity = p
		default:
			return nil, fmt.Errorf("%w: bad parity %q", ErrInvalidArguments, v)
		}
	}
	if v, ok := opts["word"]; ok {
		if c.Word, err = strconv.Atoi(v); err != nil || c.Word < 5 || c.Word > 8 {
			return nil, fmt.Errorf("%w: bad word length %q", ErrInvalidArguments, v)
		}
	}
	return c, nil
}

// FromKernelParams detects a serial console from the last console= token
// naming a ttyS or ttyAMA device. It returns nil when there is none.
func FromKernelParams(l *kernel.List) *Console {
	values := l.Values("console")
	for i := len(values) - 1; i >= 0; i-- {
		m := kernelConsole.FindStringSubmatch(values[i])
		if m == nil {
			continue
		}
		c := New(0)
		c.Unit, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			c.Speed, _ = strconv.Atoi(m[2])
		}
		if m[3] != "" {
			c.Parity = parityByShort[m[3]]
		}
		if m[4] != "" {
			c.Word, _ = strconv.Atoi(m[4])
		}
		return c
	}
	return nil
}

// ConsoleArgs renders the GRUB_SERIAL_COMMAND value.
func (c *Console) ConsoleArgs() string {
	return fmt.Sprintf("serial --unit=%d --speed=%d --parity=%s --word=%d", c.Unit, c.Speed, c.Parity, c.Word)
}

func (c *Console) line() string {
	return fmt.Sprintf("%d%s%d", c.Speed, c.Parity.short(), c.Word)
}

// KernelArgs renders the console= value, e.g. "ttyS0,115200n8".
func (c *Console) KernelArgs(arch platform.Arch) string {
	dev := "ttyS"
	if arch == platform.ArchAarch64 {
		dev = "ttyAMA"
	}
	return fmt.Sprintf("%s%d,%s", dev, c.Unit, c.line())
}

// XenHypervisorArgs renders the hypervisor line for the same port.
func (c *Console) XenHypervisorArgs() string {
	com := fmt.Sprintf("com%d", c.Unit+1)
	return fmt.Sprintf("console=%s %s=%s", com, com, c.line())
}

// XenKernelArgs renders the dom0 kernel line, which talks to the hypervisor console.
func (c *Console) XenKernelArgs() string {
	return "console=hvc0"
}
