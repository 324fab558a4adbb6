// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "probe-test")
	require.NoError(t, err)
	return NewService(log)
}

func TestReachableFalseOnUnroutableHost(t *testing.T) {
	s := newTestService(t)
	ok := s.Reachable(context.Background(), "192.0.2.1", 50*time.Millisecond)
	assert.False(t, ok)
}

func TestReachableRespectsContextCancellation(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := s.Reachable(ctx, "192.0.2.1", time.Second)
	assert.False(t, ok)
}

func TestShareExistsCollapsesEnumeratorFailureToUnknown(t *testing.T) {
	s := newTestService(t)
	got := s.ShareExists(context.Background(), "192.0.2.1", "CORE", 50*time.Millisecond)
	assert.Equal(t, ShareUnknown, got)
}

func TestShareCheckString(t *testing.T) {
	assert.Equal(t, "available", ShareAvailable.String())
	assert.Equal(t, "not_found", ShareNotFound.String())
	assert.Equal(t, "unknown", ShareUnknown.String())
}
