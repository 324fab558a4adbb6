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

package constants

const (
	Version    = "v0.1.0"
	PIDFileName = "mountaineer.pid"

	// config / state, both rooted under UserConfigDir (no system-wide
	// config dir: this is a single-user macOS agent, not a node agent).
	UserConfigDir  = "~/.mountaineer"
	ConfigFileName = "config.toml"
	StateFileName  = "state.json"

	// default shares_root: shares publish their stable path under
	// SharesRoot/<share-name>.
	SharesRoot = "~/Shares"

	// ConfigSchemaVersion is the schema_version this binary writes and
	// the newest it understands on load.
	ConfigSchemaVersion = 1
)

// CommitSHA and BuildTime are overridden at link time via -ldflags.
var (
	CommitSHA = "unknown"
	BuildTime = "unknown"
)
