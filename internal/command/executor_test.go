// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

func TestValidateCommandRejectsInjectionAttempts(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		args     []string
		wantCode merrors.ErrorCode
	}{
		{
			name:     "empty command",
			cmd:      "",
			wantCode: merrors.CommandInvalidInput,
		},
		{
			name:     "relative path",
			cmd:      "./mount_smbfs",
			wantCode: merrors.CommandInvalidInput,
		},
		{
			name:     "shell metacharacter in command",
			cmd:      "/sbin/mount_smbfs; rm -rf /",
			wantCode: merrors.CommandInvalidInput,
		},
		{
			name:     "path traversal in argument",
			cmd:      "/sbin/mount_smbfs",
			args:     []string{"../../../etc/passwd"},
			wantCode: merrors.CommandInvalidInput,
		},
		{
			name:     "too many arguments",
			cmd:      "/sbin/mount_smbfs",
			args:     make([]string, 100),
			wantCode: merrors.CommandInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCommand(tt.cmd, tt.args)
			require.Error(t, err)
			code, ok := merrors.GetCode(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestValidateCommandAcceptsWellFormedInput(t *testing.T) {
	err := validateCommand("/sbin/mount_smbfs", []string{"//alice@10.0.0.1/CORE", "/Volumes/CORE"})
	assert.NoError(t, err)
}

func TestExecCommandRunsAbsolutePathCommand(t *testing.T) {
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "command-test")
	require.NoError(t, err)

	out, err := ExecCommand(context.Background(), log, "/bin/echo", "hello")
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello")
}

func TestExecuteWithCombinedOutputSurfacesExitCode(t *testing.T) {
	executor := NewCommandExecutor(false)
	_, err := executor.ExecuteWithCombinedOutput(context.Background(), "/bin/sh", "-c", "exit 3")
	require.Error(t, err)
	code, ok := merrors.GetCode(err)
	require.True(t, ok)
	assert.Equal(t, merrors.CommandExecution, code)
}
