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
	"sync"
	"testing"
)

func sample(line int, msg string) Diagnostic {
	return Diagnostic{
		Line:        line,
		StartColumn: 0,
		EndColumn:   5,
		Message:     msg,
		Severity:    SeverityWarning,
		Source:      "phpmnd",
	}
}

func TestStoreReplaceIsWholesale(t *testing.T) {
	store := NewStore()

	store.Replace("file:///a.php", []Diagnostic{sample(1, "first"), sample(2, "second")})
	store.Replace("file:///a.php", []Diagnostic{sample(3, "third")})

	got, ok := store.Get("file:///a.php")
	if !ok {
		t.Fatal("Expected an entry")
	}
	if len(got) != 1 || got[0].Message != "third" {
		t.Errorf("Replace should not merge: got %+v", got)
	}
}

func TestStoreEmptyReplaceMeansClean(t *testing.T) {
	store := NewStore()
	store.Replace("file:///a.php", nil)

	got, ok := store.Get("file:///a.php")
	if !ok {
		t.Fatal("Checked-and-clean document should keep its entry")
	}
	if len(got) != 0 {
		t.Errorf("Expected empty set, got %+v", got)
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.Replace("file:///a.php", []Diagnostic{sample(1, "x")})

	store.Clear("file:///a.php")

	if _, ok := store.Get("file:///a.php"); ok {
		t.Error("Cleared document should have no entry")
	}

	// Clearing an absent document is a no-op.
	store.Clear("file:///never-seen.php")
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Replace("file:///a.php", []Diagnostic{sample(1, "original")})

	got, _ := store.Get("file:///a.php")
	got[0].Message = "mutated"

	again, _ := store.Get("file:///a.php")
	if again[0].Message != "original" {
		t.Error("Get must return a copy, not the stored slice")
	}
}

func TestStoreReplaceCopiesInput(t *testing.T) {
	store := NewStore()
	input := []Diagnostic{sample(1, "original")}
	store.Replace("file:///a.php", input)

	input[0].Message = "mutated"

	got, _ := store.Get("file:///a.php")
	if got[0].Message != "original" {
		t.Error("Replace must copy the input slice")
	}
}

func TestStoreKeysIndependent(t *testing.T) {
	store := NewStore()
	store.Replace("file:///a.php", []Diagnostic{sample(1, "a")})
	store.Replace("file:///b.php", []Diagnostic{sample(2, "b")})

	store.Clear("file:///a.php")

	if _, ok := store.Get("file:///b.php"); !ok {
		t.Error("Clearing one document must not touch another")
	}
	if store.Count("file:///b.php") != 1 {
		t.Errorf("Count = %d, want 1", store.Count("file:///b.php"))
	}
}

func TestStoreDocumentsAndTotal(t *testing.T) {
	store := NewStore()
	store.Replace("file:///b.php", []Diagnostic{sample(1, "x"), sample(2, "y")})
	store.Replace("file:///a.php", []Diagnostic{sample(3, "z")})

	docs := store.Documents()
	if len(docs) != 2 || docs[0] != "file:///a.php" || docs[1] != "file:///b.php" {
		t.Errorf("Documents = %v, want sorted pair", docs)
	}
	if store.Total() != 3 {
		t.Errorf("Total = %d, want 3", store.Total())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := "file:///a.php"
			if n%2 == 0 {
				doc = "file:///b.php"
			}
			for j := 0; j < 100; j++ {
				store.Replace(doc, []Diagnostic{sample(j, "m")})
				store.Get(doc)
				store.Total()
			}
		}(i)
	}
	wg.Wait()

	// Last write wins per key; both entries exist with one diagnostic.
	if store.Count("file:///a.php") != 1 || store.Count("file:///b.php") != 1 {
		t.Errorf("Counts = %d/%d, want 1/1",
			store.Count("file:///a.php"), store.Count("file:///b.php"))
	}
}
