// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package reconciler

import "github.com/mountaineer/mountaineer/internal/model"

// chooseDesiredBackend implements spec.md §4.6 Step D exactly, and is the
// exhaustive decision table §8 asks for: a pure function over
// (active, primary_reachable, fallback_reachable, auto_failback,
// stable_elapsed), with no dependency on the clock, the driver, or I/O,
// so every cell of the table is a plain unit test.
func chooseDesiredBackend(active model.Backend, primaryReachable, fallbackReachable, autoFailback, stableElapsed bool) model.Backend {
	switch active {
	case model.BackendNone:
		if primaryReachable {
			return model.BackendPrimary
		}
		if fallbackReachable {
			return model.BackendFallback
		}
		return model.BackendNone

	case model.BackendPrimary:
		if primaryReachable {
			return model.BackendPrimary
		}
		return model.BackendFallback

	case model.BackendFallback:
		if fallbackReachable {
			if primaryReachable && autoFailback && stableElapsed {
				return model.BackendPrimary
			}
			return model.BackendFallback
		}
		if primaryReachable {
			return model.BackendPrimary
		}
		return model.BackendFallback

	default:
		return model.BackendNone
	}
}
