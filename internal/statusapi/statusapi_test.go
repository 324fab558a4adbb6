// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountaineer/mountaineer/internal/model"
)

func newTestServer(t *testing.T, status StatusFunc) (*Server, context.CancelFunc) {
	t.Helper()
	log, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "statusapi-test")
	require.NoError(t, err)

	srv := New(log, 0, status)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, cancel
}

func TestStatusEndpointServesPublishedStatuses(t *testing.T) {
	srv, cancel := newTestServer(t, func() []model.ShareStatus {
		return []model.ShareStatus{{Name: "Core", Active: model.BackendPrimary}}
	})
	defer cancel()

	resp, err := http.Get(fmt.Sprintf("http://%s/status", srv.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var statuses []model.ShareStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, "Core", statuses[0].Name)
	assert.Equal(t, model.BackendPrimary, statuses[0].Active)
}

func TestEventsEndpointStreamsSnapshotOnChange(t *testing.T) {
	calls := 0
	srv, cancel := newTestServer(t, func() []model.ShareStatus {
		calls++
		active := model.BackendNone
		if calls > 1 {
			active = model.BackendPrimary
		}
		return []model.ShareStatus{{Name: "Core", Active: active}}
	})
	defer cancel()

	client := &http.Client{Timeout: 3 * time.Second}
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("http://%s/events", srv.Addr()), nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The first poll differs from the (empty) previous snapshot, so it is
	// streamed as one SSE data frame.
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	assert.Contains(t, line, `"name":"Core"`)
}
