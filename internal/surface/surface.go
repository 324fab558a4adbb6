// Copyright 2025 The Mountaineer Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package surface holds the thin command-to-controller adapter work
// shared by the cmd/* packages: rendering a []model.ShareStatus as a
// table or JSON, and shaping status data for a tray-style menu. Actual
// menu rendering is an external collaborator (spec.md §1); only the data
// shaping lives here.
package surface

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/exp/slices"

	"github.com/mountaineer/mountaineer/internal/model"
)

// PrintJSON marshals v with two-space indentation, the convention every
// `--json` flag in spec.md §6's CLI grammar uses.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintStatusTable renders statuses as an aligned column table via the
// standard library's tabwriter — the teacher repo has no table-rendering
// dependency of its own to ground a third-party table writer on (see
// DESIGN.md's "Dropped teacher dependencies"), so this mirrors plain
// `fmt.Fprintf` + `text/tabwriter` idioms used elsewhere in the corpus.
func PrintStatusTable(w io.Writer, statuses []model.ShareStatus) {
	sorted := append([]model.ShareStatus(nil), statuses...)
	slices.SortFunc(sorted, func(a, b model.ShareStatus) int { return strings.Compare(a.Name, b.Name) })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIVE\tDESIRED\tPRIMARY\tFALLBACK\tSTABLE PATH\tLAST ERROR")
	for _, s := range sorted {
		active := string(s.Active)
		if active == "" {
			active = "-"
		}
		desired := string(s.Desired)
		if desired == "" {
			desired = "-"
		}
		lastErr := s.LastError
		if lastErr == "" {
			lastErr = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name, active, desired,
			backendCell(s.Primary), backendCell(s.Fallback),
			s.StablePath, lastErr)
	}
	tw.Flush()
}

func backendCell(b model.BackendStatus) string {
	switch {
	case b.Ready():
		return "ready"
	case b.Reachable:
		return "reachable"
	default:
		return "down"
	}
}

// MenuModel is the data a tray binary renders: one row per share plus
// enough detail to build a "switch to…" submenu. Building the actual menu
// (icons, click handlers) is out of scope; shaping the data for it is the
// "thin command-to-controller adapter" work spec.md's Surface component
// names.
type MenuModel struct {
	Shares []MenuShare `json:"shares"`
}

// MenuShare is one row of MenuModel.
type MenuShare struct {
	Name                   string `json:"name"`
	Active                 string `json:"active_backend,omitempty"`
	PrimaryReady           bool   `json:"primary_ready"`
	FallbackReady          bool   `json:"fallback_ready"`
	PrimaryRecoveryPending bool   `json:"primary_recovery_pending"`
	LastError              string `json:"last_error,omitempty"`
}

// BuildMenuModel shapes a reconcile cycle's published statuses into the
// form a tray menu would render.
func BuildMenuModel(statuses []model.ShareStatus) MenuModel {
	mm := MenuModel{Shares: make([]MenuShare, 0, len(statuses))}
	for _, s := range statuses {
		mm.Shares = append(mm.Shares, MenuShare{
			Name:                   s.Name,
			Active:                 string(s.Active),
			PrimaryReady:           s.Primary.Ready(),
			FallbackReady:          s.Fallback.Ready(),
			PrimaryRecoveryPending: s.PrimaryRecoveryPending,
			LastError:              s.LastError,
		})
	}
	slices.SortFunc(mm.Shares, func(a, b MenuShare) int { return strings.Compare(a.Name, b.Name) })
	return mm
}
