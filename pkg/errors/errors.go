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

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

func (e *MountaineerError) Error() string {
	// Metadata is left out of Error() on purpose: it's for structured
	// consumption (status API, logging), not for a one-line message. The
	// one exception is a command's "stderr", appended on its own line.
	msg := fmt.Sprintf("[%s-%d] %s", e.Domain, e.Code, e.Message)
	if e.Details != "" {
		msg += " - " + e.Details
	}
	if e.Metadata != nil {
		if stderr, ok := e.Metadata["stderr"]; ok && stderr != "" {
			msg += "\ncommand output: " + stderr
		}
	}
	return msg
}

func (e *MountaineerError) WithMetadata(key, value string) *MountaineerError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// MarshalJSON stamps a timestamp onto every serialized error, the way the
// status API needs it for "when did this last fail" display.
func (e *MountaineerError) MarshalJSON() ([]byte, error) {
	type alias MountaineerError
	return json.Marshal(&struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{
		alias:     (*alias)(e),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// New creates a MountaineerError for the given code.
func New(code ErrorCode, details string) *MountaineerError {
	def, ok := errorDefinitions[code]
	if !ok {
		return &MountaineerError{
			Code:       code,
			Domain:     "UNKNOWN",
			Message:    "unknown error",
			Details:    details,
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &MountaineerError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
	}
}

// Is implements the interface errors.Is dispatches to.
func (e *MountaineerError) Is(target error) bool {
	if t, ok := target.(*MountaineerError); ok {
		return e.Code == t.Code && e.Domain == t.Domain
	}
	return false
}

// Is reports whether err matches a sentinel MountaineerError by code+domain.
func Is(err, target error) bool {
	me, ok := err.(*MountaineerError)
	if !ok {
		return false
	}
	t, ok := target.(*MountaineerError)
	if !ok {
		return false
	}
	return me.Code == t.Code && me.Domain == t.Domain
}

// Wrap re-codes err under a new ErrorCode, preserving its metadata and
// recording what it was wrapped from.
func Wrap(err error, code ErrorCode) *MountaineerError {
	if me, ok := err.(*MountaineerError); ok {
		wrapped := New(code, me.Details)
		for k, v := range me.Metadata {
			wrapped.WithMetadata(k, v)
		}
		wrapped.WithMetadata("wrapped_code", fmt.Sprintf("%d", me.Code))
		wrapped.WithMetadata("wrapped_domain", string(me.Domain))
		wrapped.WithMetadata("wrapped_message", me.Message)
		return wrapped
	}
	return New(code, err.Error())
}

func (e *MountaineerError) Unwrap() error {
	if e.Metadata != nil {
		if original, ok := e.Metadata["wrapped_error"]; ok {
			return fmt.Errorf("%s", original)
		}
	}
	return nil
}

// IsMountaineerError reports whether err is (or wraps) a MountaineerError.
func IsMountaineerError(err error) bool {
	var me *MountaineerError
	return errors.As(err, &me)
}

// NewCommandError builds the common "subprocess failed" error shape shared
// by MountDriver and ProbeService's enumerator.
func NewCommandError(code ErrorCode, cmd string, exitCode int, stderr string) *MountaineerError {
	return New(code, "command execution failed").
		WithMetadata("command", cmd).
		WithMetadata("exit_code", fmt.Sprintf("%d", exitCode)).
		WithMetadata("stderr", stderr)
}

// GetCode extracts the ErrorCode from err if it is, or wraps, a
// MountaineerError.
func GetCode(err error) (ErrorCode, bool) {
	if err == nil {
		return 0, false
	}
	if me, ok := err.(*MountaineerError); ok {
		return me.Code, true
	}
	var me *MountaineerError
	if errors.As(err, &me) {
		return me.Code, true
	}
	return 0, false
}

// GetErrorWithCode returns the first MountaineerError in err's chain with
// the given code, or nil.
func GetErrorWithCode(err error, code ErrorCode) *MountaineerError {
	if err == nil {
		return nil
	}
	if me, ok := err.(*MountaineerError); ok && me.Code == code {
		return me
	}
	var me *MountaineerError
	if errors.As(err, &me) && me.Code == code {
		return me
	}
	return nil
}
