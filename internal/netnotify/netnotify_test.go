// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package netnotify

import (
	"strings"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) *Notifier {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "netnotify-test")
	require.NoError(t, err)
	n := New(log)
	n.debounce = 20 * time.Millisecond
	return n
}

func TestConsumeEmitsOneTokenForBurstOfLines(t *testing.T) {
	n := newTestNotifier(t)
	reader := strings.NewReader("State:/Network/Global/IPv4\nState:/Network/Global/IPv6\n")

	go n.consume(reader)

	select {
	case <-n.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected a change token")
	}

	select {
	case <-n.Changes():
		t.Fatal("burst of lines should have been debounced into a single token")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScheduleEmitIsNonBlockingWhenChannelFull(t *testing.T) {
	n := newTestNotifier(t)
	n.changes <- struct{}{}

	n.scheduleEmit()
	time.Sleep(50 * time.Millisecond)

	assert.Len(t, n.changes, 1)
}
