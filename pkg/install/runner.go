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

package install

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/NVIDIA/bootcfg/pkg/errors"
)

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	Logger *slog.Logger
}

// NewExecRunner returns a Runner for the local system.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Logger: slog.Default()}
}

// Run executes cmd and returns a structured error carrying its output on
// failure.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("running command", slog.String("command", cmd.String()))

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Env = Environ(os.Environ(), cmd)
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	start := time.Now()
	err := c.Run()
	observeCommand(cmd.Name(), time.Since(start), err)

	if err != nil {
		output := strings.TrimSpace(out.String())
		logger.Error("command failed",
			slog.String("command", cmd.Name()),
			slog.String("error", err.Error()),
			slog.String("output", output))
		code := errors.ErrCodeInternal
		if ctx.Err() == context.DeadlineExceeded {
			code = errors.ErrCodeTimeout
		}
		return errors.WrapWithContext(code, fmt.Sprintf("%s failed", cmd.Name()), err,
			map[string]any{"command": cmd.String(), "output": output})
	}
	logger.Debug("command succeeded", slog.String("command", cmd.Name()), slog.Duration("duration", time.Since(start)))
	return nil
}

// Environ applies cmd's Unset and Env to a KEY=VALUE environment.
func Environ(base []string, cmd Command) []string {
	res := make([]string, 0, len(base)+len(cmd.Env))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if slices.Contains(cmd.Unset, k) {
			continue
		}
		if _, override := cmd.Env[k]; override {
			continue
		}
		res = append(res, kv)
	}
	for k, v := range cmd.Env {
		res = append(res, k+"="+v)
	}
	slices.Sort(res[len(res)-len(cmd.Env):])
	return res
}

// DryRunner records commands and prints them instead of running them.
type DryRunner struct {
	Out io.Writer

	mu       sync.Mutex
	commands []Command
}

// Run implements Runner.
func (d *DryRunner) Run(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, cmd)
	if d.Out != nil {
		fmt.Fprintln(d.Out, cmd.String())
	}
	return nil
}

// Commands returns what was run so far.
func (d *DryRunner) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.commands)
}

// RunAll runs cmds in order and stops at the first failure.
func RunAll(ctx context.Context, r Runner, cmds []Command) error {
	for _, c := range cmds {
		if err := r.Run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
