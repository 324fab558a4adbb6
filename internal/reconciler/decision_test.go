// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mountaineer/mountaineer/internal/model"
)

func TestChooseDesiredBackendExhaustive(t *testing.T) {
	cases := []struct {
		name                                          string
		active                                        model.Backend
		primaryReachable, fallbackReachable           bool
		autoFailback, stableElapsed                   bool
		want                                          model.Backend
	}{
		{"none, both down", model.BackendNone, false, false, false, false, model.BackendNone},
		{"none, primary up", model.BackendNone, true, false, false, false, model.BackendPrimary},
		{"none, only fallback up", model.BackendNone, false, true, false, false, model.BackendFallback},
		{"none, both up prefers primary", model.BackendNone, true, true, false, false, model.BackendPrimary},

		{"on primary, stays while reachable", model.BackendPrimary, true, true, false, false, model.BackendPrimary},
		{"on primary, drops to fallback", model.BackendPrimary, false, true, false, false, model.BackendFallback},
		{"on primary, drops to fallback even if fallback down too", model.BackendPrimary, false, false, false, false, model.BackendFallback},

		{"on fallback, stays, auto_failback off", model.BackendFallback, true, true, false, false, model.BackendFallback},
		{"on fallback, stays, not yet stable", model.BackendFallback, true, true, true, false, model.BackendFallback},
		{"on fallback, fails back when stable", model.BackendFallback, true, true, true, true, model.BackendPrimary},
		{"on fallback, fallback down, primary up", model.BackendFallback, true, false, false, false, model.BackendPrimary},
		{"on fallback, both down, stays", model.BackendFallback, false, false, false, false, model.BackendFallback},
		{"on fallback, fallback down, primary up, auto off still goes primary", model.BackendFallback, true, false, false, false, model.BackendPrimary},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := chooseDesiredBackend(c.active, c.primaryReachable, c.fallbackReachable, c.autoFailback, c.stableElapsed)
			assert.Equal(t, c.want, got)
		})
	}
}
