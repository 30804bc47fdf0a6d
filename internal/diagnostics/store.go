// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"sort"
	"sync"
)

// =============================================================================
// STORE
// =============================================================================

// Store maps document identities to their current diagnostic set.
//
// Description:
//
//	Holds the transient per-document diagnostics produced by analysis runs.
//	Entries are replaced wholesale per run, never merged. An entry exists
//	with an empty slice when a document was checked and found clean; a
//	cleared document has no entry at all.
//
// Thread Safety:
//
//	Safe for concurrent use. Writes to different documents are independent;
//	concurrent writes to the same document are last-write-wins.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]Diagnostic
}

// NewStore creates an empty diagnostics store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string][]Diagnostic),
	}
}

// Replace installs the full diagnostic set for a document.
//
// Description:
//
//	Replaces whatever was previously stored for the document. The input
//	slice is copied; callers may reuse it afterwards. A nil or empty input
//	records the document as checked-and-clean.
//
// Inputs:
//
//	docID - Document identity (URI or absolute path)
//	diags - Ordered diagnostics from the latest run
func (s *Store) Replace(docID string, diags []Diagnostic) {
	stored := make([]Diagnostic, len(diags))
	copy(stored, diags)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[docID] = stored
}

// Clear removes the document's entry entirely.
//
// Used when the analyzer could not be invoked, when the feature is
// disabled, and when a document closes. Clearing an absent document
// is a no-op.
func (s *Store) Clear(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, docID)
}

// Get returns a copy of the document's diagnostics.
//
// Outputs:
//
//	[]Diagnostic - Copy of the stored set, in run order
//	bool - False if the document has no entry (never checked, or cleared)
func (s *Store) Get(docID string) ([]Diagnostic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entries[docID]
	if !ok {
		return nil, false
	}
	out := make([]Diagnostic, len(stored))
	copy(out, stored)
	return out, true
}

// Documents returns the identities of all documents with an entry, sorted.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]string, 0, len(s.entries))
	for id := range s.entries {
		docs = append(docs, id)
	}
	sort.Strings(docs)
	return docs
}

// Count returns the number of diagnostics stored for a document.
func (s *Store) Count(docID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[docID])
}

// Total returns the number of diagnostics stored across all documents.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, diags := range s.entries {
		total += len(diags)
	}
	return total
}
