// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"context"
	"strconv"

	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/command"
	merrors "github.com/mountaineer/mountaineer/pkg/errors"
)

// OpenHandlesChecker answers the switch protocol's idle check (spec.md
// §4.7 step 1). A capability interface rather than a concrete type so
// tests can substitute faketesting.FakeOpenHandlesChecker.
type OpenHandlesChecker interface {
	OpenHandles(ctx context.Context, path string) bool
}

// lsofChecker is the reference platform's open-handles probe: `lsof +D
// path`, exit 0 with output meaning at least one process has a file open
// under path, exit 1 meaning none found.
type lsofChecker struct {
	log      logger.Logger
	executor *command.CommandExecutor
}

func newLsofChecker(log logger.Logger) *lsofChecker {
	return &lsofChecker{log: log, executor: command.NewCommandExecutor(false)}
}

func (c *lsofChecker) OpenHandles(ctx context.Context, path string) bool {
	_, err := c.executor.Execute(ctx, "/usr/sbin/lsof", "+D", path)
	if err == nil {
		return true
	}

	if code, ok := merrors.GetCode(err); ok && code == merrors.CommandExecution {
		if me := merrors.GetErrorWithCode(err, merrors.CommandExecution); me != nil {
			if exitCode, convErr := strconv.Atoi(me.Metadata["exit_code"]); convErr == nil && exitCode == 1 {
				return false
			}
		}
	}

	c.log.Warn("open-handles check failed, assuming idle", "path", path, "err", err)
	return false
}
