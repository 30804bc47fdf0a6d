// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// =============================================================================
// MESSAGE FRAMING
// =============================================================================

// readMessage reads one Content-Length framed JSON-RPC payload.
//
// Description:
//
//	Parses headers until the blank separator line, then reads exactly
//	Content-Length bytes of body. Header names are matched
//	case-insensitively; unknown headers are skipped. io.EOF propagates
//	unchanged so the caller can distinguish a clean client disconnect
//	from a framing error.
//
// Inputs:
//
//	r - Buffered reader over the transport
//
// Outputs:
//
//	[]byte - The raw JSON payload
//	error - io.EOF on disconnect, or a framing error
func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			length, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = length
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// writeMessage writes one Content-Length framed payload.
//
// Callers serialize access; the server routes every outgoing message
// through a single mutex-guarded send path.
func writeMessage(w io.Writer, payload []byte) error {
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
