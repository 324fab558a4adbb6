// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mountaineer/mountaineer/internal/model"
)

func TestPrintStatusTableRendersDashesForEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	PrintStatusTable(&buf, []model.ShareStatus{{Name: "Core"}})

	out := buf.String()
	assert.Contains(t, out, "Core")
	assert.Contains(t, out, "-")
}

func TestPrintJSONEncodesStatuses(t *testing.T) {
	var buf bytes.Buffer
	require := assert.New(t)
	err := PrintJSON(&buf, []model.ShareStatus{{Name: "Core", Active: model.BackendPrimary}})
	require.NoError(err)
	require.Contains(buf.String(), `"name": "Core"`)
	require.Contains(buf.String(), `"active_backend": "primary"`)
}

func TestBuildMenuModelShapesStatuses(t *testing.T) {
	statuses := []model.ShareStatus{
		{
			Name:   "Core",
			Active: model.BackendFallback,
			Primary: model.BackendStatus{Reachable: true},
		},
	}
	mm := BuildMenuModel(statuses)
	assert.Len(t, mm.Shares, 1)
	assert.Equal(t, "Core", mm.Shares[0].Name)
	assert.False(t, mm.Shares[0].PrimaryReady)
}
