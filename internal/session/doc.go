// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session coordinates document check cycles.
//
// # Architecture
//
// A Session ties the pieces of one check cycle together:
//
//	trigger --> Session.Check --> analyzer.Run --> hint.Parse --> Store.Replace
//
// The session owns the per-document diagnostics store and the one-shot
// invocation-failure latch. The latch is explicit session state, set on
// the first failed invocation and never reset, so the user sees exactly
// one "analyzer could not run" prompt per process regardless of how many
// cycles fail afterwards.
//
// # Failure Semantics
//
// A failed invocation clears the document's stored diagnostics; findings
// from an earlier run must never outlive the run that could not replace
// them. Check cycles are independent: a failure for one document never
// touches another document's entry.
package session
