// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hint parses the analyzer's hint-mode output into diagnostics.
//
// # Line Format
//
// Hint mode emits one line per finding, addressable by file and line:
//
//	/srv/app/src/Price.php:12: Magic number: 42
//	/srv/app/src/Price.php:30 Consider extracting this to a constant
//	C:\app\src\Price.php:7:  Magic number: 3.14
//
// The parser targets exactly this vendor format. It is tolerant, not
// general: unrecognized lines are skipped silently, and the format is
// assumed to be one line per finding (no continuation stitching).
//
// # Mapping Rules
//
// A matched line becomes one diagnostic with severity Warning and source
// "phpmnd". The range brackets the first verbatim occurrence of the
// reported numeric token on the target line when there is one, and spans
// the whole line otherwise. Findings pointing outside the document's
// current line range are dropped; the document may have been edited
// since the analyzer read it from disk.
package hint
