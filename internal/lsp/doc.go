// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lsp exposes the analyzer through a Language Server Protocol
// server on stdio.
//
// # Architecture
//
// One reader loop parses Content-Length framed JSON-RPC messages from
// stdin; all writes go through a single mutex-guarded writer to stdout.
// Logging goes to stderr only, since stdout carries the protocol.
//
// The server keeps an overlay of open document text. didOpen and didSave
// trigger a check cycle: the analyzer reads the saved file from disk
// while the overlay supplies line count and line text for range mapping.
// The two can differ when the editor buffer is ahead of the disk file;
// the mapper drops findings that no longer fit rather than clamping.
//
// # Diagnostics Lifecycle
//
// Every check publishes the full replacement set for its document via
// textDocument/publishDiagnostics. Clearing is an explicit publish of an
// empty array, never an omitted one; the server tracks which URIs have
// diagnostics outstanding so closed or failed documents get exactly one
// clearing publish.
//
// # Supported Methods
//
//	initialize / initialized / shutdown / exit
//	textDocument/didOpen      check + publish
//	textDocument/didChange    overlay update only (full-text sync)
//	textDocument/didSave      check + publish
//	textDocument/didClose     forget + clearing publish
//
// Unknown requests get a MethodNotFound error response; unknown
// notifications are ignored.
package lsp
