// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

// Notifier receives the one-time user-visible invocation-failure message.
//
// The session guarantees at most one call per session lifetime; callers
// decide how to surface it (LSP window/showMessage, a stderr line, ...).
type Notifier interface {
	NotifyInvocationFailure(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(message string)

// NotifyInvocationFailure calls the wrapped function.
func (f NotifierFunc) NotifyInvocationFailure(message string) {
	f(message)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// NotifyInvocationFailure does nothing.
func (NopNotifier) NotifyInvocationFailure(string) {}
