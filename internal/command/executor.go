// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package command runs the external OS subprocesses Mountaineer's domain
// packages depend on (mount_smbfs, umount, diskutil, smbutil, lsof,
// scutil), with a shared injection-safety check and debug logging.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/stratastor/logger"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// dangerousChars blocks shell metacharacters even though these commands
// are never run through a shell — a defense against a future caller that
// forwards unsanitized user input into an argv slot.
var dangerousChars = "&|><$`\\[];{}"

const defaultCommandTimeout = 30 * time.Second

// ExecCommand runs name with args and returns its combined output. Used by
// one-off callers (the share enumerator) that don't need a reusable
// CommandExecutor.
func ExecCommand(ctx context.Context, log logger.Logger, name string, args ...string) ([]byte, error) {
	if err := validateCommand(name, args); err != nil {
		return nil, err
	}

	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, defaultCommandTimeout)
		defer cancel()
	}

	log.Debug("executing command", "cmd", renderCommand(name, args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = []string{}

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error("command exited non-zero",
				"cmd", renderCommand(name, args),
				"exit_code", exitErr.ExitCode(),
				"output", string(output))
			return output, merrors.NewCommandError(merrors.CommandExecution, renderCommand(name, args), exitErr.ExitCode(), string(output))
		}
		log.Error("command failed to run", "cmd", renderCommand(name, args), "err", err, "output", string(output))
		return output, merrors.New(merrors.CommandSpawnFailed, err.Error()).
			WithMetadata("command", renderCommand(name, args))
	}

	return output, nil
}

// renderCommand renders argv as a shell-safe string for log lines, without
// ever invoking a shell to run it.
func renderCommand(name string, args []string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}

func validateCommand(name string, args []string) error {
	if name == "" {
		return merrors.New(merrors.CommandInvalidInput, "empty command")
	}
	if !strings.HasPrefix(name, "/") && strings.ContainsAny(name, "/\\") {
		return merrors.New(merrors.CommandInvalidInput, "relative paths are not allowed for commands")
	}
	if strings.ContainsAny(name, dangerousChars) {
		return merrors.New(merrors.CommandInvalidInput, "command contains invalid characters")
	}
	for _, arg := range args {
		if strings.ContainsAny(arg, dangerousChars) {
			return merrors.New(merrors.CommandInvalidInput, "argument contains invalid characters")
		}
		if strings.Contains(arg, "..") {
			return merrors.New(merrors.CommandInvalidInput, "path traversal not allowed")
		}
	}
	if len(args) > 64 {
		return merrors.New(merrors.CommandInvalidInput, "too many arguments")
	}
	return nil
}

// CommandExecutor is a reusable subprocess runner with its own timeout,
// working directory, environment, and optional sudo prefix. MountDriver
// and ProbeService each hold one.
type CommandExecutor struct {
	UseSudo bool
	Timeout time.Duration
	WorkDir string
	Env     []string
}

func NewCommandExecutor(useSudo bool) *CommandExecutor {
	return &CommandExecutor{
		UseSudo: useSudo,
		Timeout: 30 * time.Second,
	}
}

func (e *CommandExecutor) buildArgs(cmd string, args []string) []string {
	cmdArgs := make([]string, 0, len(args)+2)
	if e.UseSudo {
		cmdArgs = append(cmdArgs, "sudo", cmd)
	} else {
		cmdArgs = append(cmdArgs, cmd)
	}
	return append(cmdArgs, args...)
}

// Execute runs cmd and returns stdout; stderr is discarded on success and
// reported on failure.
func (e *CommandExecutor) Execute(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	if err := validateCommand(cmd, args); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok && e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmdArgs := e.buildArgs(cmd, args)
	execCmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	execCmd.Env = append(execCmd.Env, e.Env...)
	if e.WorkDir != "" {
		execCmd.Dir = e.WorkDir
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	if err := execCmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), merrors.NewCommandError(merrors.CommandExecution, renderCommand(cmd, args), exitErr.ExitCode(), stderr.String())
		}
		return stdout.Bytes(), merrors.New(merrors.CommandSpawnFailed, err.Error()).
			WithMetadata("command", renderCommand(cmd, args))
	}

	return stdout.Bytes(), nil
}

// ExecuteWithCombinedOutput runs cmd, returning stdout and stderr
// interleaved the way a terminal would see them.
func (e *CommandExecutor) ExecuteWithCombinedOutput(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	if err := validateCommand(cmd, args); err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok && e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmdArgs := e.buildArgs(cmd, args)
	execCmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	execCmd.Env = append(execCmd.Env, e.Env...)
	if e.WorkDir != "" {
		execCmd.Dir = e.WorkDir
	}

	var combined bytes.Buffer
	execCmd.Stdout = &combined
	execCmd.Stderr = &combined

	if err := execCmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return combined.Bytes(), merrors.NewCommandError(merrors.CommandExecution, renderCommand(cmd, args), exitErr.ExitCode(), combined.String())
		}
		return combined.Bytes(), fmt.Errorf("command failed to run: %w: %s", err, combined.String())
	}

	return combined.Bytes(), nil
}
