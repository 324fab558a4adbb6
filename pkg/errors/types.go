/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainMount  Domain = "MOUNT"
	DomainProbe  Domain = "PROBE"
	DomainLinker Domain = "LINKER"
	DomainStore  Domain = "STORE"
	DomainSwitch Domain = "SWITCH"
	DomainConfig Domain = "CONFIG"
	DomainNet     Domain = "NET"
	DomainServer  Domain = "SERVER"
	DomainCommand Domain = "COMMAND"
)

// ErrorCode represents a unique error identifier.
type ErrorCode int

// Domain represents the subsystem an error originated from.
type Domain string

type MountaineerError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	// Metadata carries structured context (share, backend, command,
	// exit_code, stderr, rolled_back, ...) that doesn't fit the fixed
	// fields but matters for logging and for the status API.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges, by subsystem:
// 1000-1099: Mount/unmount (MountError)
// 1100-1199: Probe (reachability, share enumeration)
// 1200-1299: Stable symlink publication (LinkerError)
// 1300-1399: Store (config/state persistence)
// 1400-1499: Switch protocol
// 1500-1599: Configuration
const (
	// Mount errors (1000-1099)
	MountCreateMountPoint = 1000 + iota // failed to create the mount point directory
	MountFailed                         // mount subprocess reported failure
	MountUnmountFailed                  // unmount subprocess reported failure
	MountCommandSpawn                   // failed to spawn the mount/unmount subprocess
	MountAlreadyMounted                 // a benign collision: something is already mounted there
	MountNotMounted                     // unmount requested on a path that isn't mounted
)

const (
	// Probe errors (1100-1199)
	ProbeTimeout     = 1100 + iota // reachability probe exceeded its deadline
	ProbeDialFailed                // TCP dial failed outright
	ProbeEnumFailed                // share-enumeration subprocess failed
	ProbeBadResponse               // share-enumeration output could not be parsed
)

const (
	// Linker errors (1200-1299)
	LinkerPublishFailed  = 1200 + iota // failed to publish the stable symlink
	LinkerResolveFailed                // failed to resolve the stable symlink's target
	LinkerStaleTarget                  // stable symlink resolves to a backend that isn't mounted
	LinkerNotASymlink                  // the stable path exists but isn't a symlink
)

const (
	// Store errors (1300-1399)
	StoreLoadFailed       = 1300 + iota // failed to load config or state from disk
	StoreSaveFailed                     // failed to persist config or state to disk
	StoreCorrupted                      // config or state file failed to parse
	StoreValidationFailed               // loaded config failed validation
	StoreSchemaTooNew                   // config schema_version is newer than this binary understands
)

const (
	// Switch protocol errors (1400-1499)
	SwitchPrepareFailed = 1400 + iota // failed to mount the candidate backend
	SwitchPublishFailed               // failed to publish the stable symlink to the candidate
	SwitchRollbackFailed              // rollback itself failed after a failed switch
	SwitchBusy                        // the current mount has open file handles
)

const (
	// Config errors (1500-1599)
	ConfigNotFound          = 1500 + iota // config file not found
	ConfigInvalid                         // config failed to parse
	ConfigWriteFailed                     // failed to write config
	ConfigValidationFailed                // config failed semantic validation
	ConfigDuplicateName                   // a ShareSpec/AliasSpec name collides (case-insensitively)
	ConfigUnknownShare                    // referenced share name has no ShareSpec
)

const (
	// Command validation/spawn errors (1600-1699)
	CommandInvalidInput ErrorCode = 1600 + iota // command or argument failed the injection-safety blocklist
	CommandSpawnFailed                // OS refused to start the subprocess
	CommandExecution                  // subprocess exited non-zero
)

type errorDef struct {
	message    string
	domain     Domain
	httpStatus int
}

var errorDefinitions = map[ErrorCode]errorDef{
	MountCreateMountPoint: {"failed to create mount point", DomainMount, http.StatusInternalServerError},
	MountFailed:           {"mount command failed", DomainMount, http.StatusInternalServerError},
	MountUnmountFailed:    {"unmount command failed", DomainMount, http.StatusInternalServerError},
	MountCommandSpawn:     {"failed to spawn mount command", DomainMount, http.StatusInternalServerError},
	MountAlreadyMounted:   {"mount point already in use", DomainMount, http.StatusConflict},
	MountNotMounted:       {"path is not mounted", DomainMount, http.StatusNotFound},

	ProbeTimeout:     {"reachability probe timed out", DomainProbe, http.StatusGatewayTimeout},
	ProbeDialFailed:  {"reachability dial failed", DomainProbe, http.StatusServiceUnavailable},
	ProbeEnumFailed:  {"share enumeration failed", DomainProbe, http.StatusInternalServerError},
	ProbeBadResponse: {"share enumeration output unparseable", DomainProbe, http.StatusInternalServerError},

	LinkerPublishFailed: {"failed to publish stable symlink", DomainLinker, http.StatusInternalServerError},
	LinkerResolveFailed: {"failed to resolve stable symlink", DomainLinker, http.StatusInternalServerError},
	LinkerStaleTarget:    {"stable symlink target is not mounted", DomainLinker, http.StatusConflict},
	LinkerNotASymlink:    {"stable path is not a symlink", DomainLinker, http.StatusConflict},

	StoreLoadFailed:       {"failed to load from disk", DomainStore, http.StatusInternalServerError},
	StoreSaveFailed:       {"failed to save to disk", DomainStore, http.StatusInternalServerError},
	StoreCorrupted:        {"file is corrupted", DomainStore, http.StatusInternalServerError},
	StoreValidationFailed: {"validation failed", DomainStore, http.StatusBadRequest},
	StoreSchemaTooNew:     {"config schema is newer than this binary understands", DomainStore, http.StatusBadRequest},

	SwitchPrepareFailed:  {"failed to prepare candidate backend", DomainSwitch, http.StatusInternalServerError},
	SwitchPublishFailed:  {"failed to publish candidate backend", DomainSwitch, http.StatusInternalServerError},
	SwitchRollbackFailed: {"rollback failed after failed switch", DomainSwitch, http.StatusInternalServerError},
	SwitchBusy:           {"current mount has open files", DomainSwitch, http.StatusConflict},

	ConfigNotFound:         {"config not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:          {"config is invalid", DomainConfig, http.StatusBadRequest},
	ConfigWriteFailed:      {"failed to write config", DomainConfig, http.StatusInternalServerError},
	ConfigValidationFailed: {"config validation failed", DomainConfig, http.StatusBadRequest},
	ConfigDuplicateName:    {"duplicate share or alias name", DomainConfig, http.StatusConflict},
	ConfigUnknownShare:     {"unknown share name", DomainConfig, http.StatusNotFound},

	CommandInvalidInput: {"command failed validation", DomainCommand, http.StatusBadRequest},
	CommandSpawnFailed:  {"failed to spawn command", DomainCommand, http.StatusInternalServerError},
	CommandExecution:    {"command execution failed", DomainCommand, http.StatusInternalServerError},
}
