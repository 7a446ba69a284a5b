// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package slug normalizes free-form labels into tag slugs and enforces the
// stop-word policy applied to every stored event tag.
//
// A slug is lower-cased with runs of non-alphanumerics collapsed to a
// single '-', trimmed of leading and trailing '-'. Slugs shorter than
// four characters are rejected. Slugify is idempotent:
// Slugify(Slugify(x)) == Slugify(x).
package slug

import (
	"sort"
	"strings"
	"unicode"
)

// MinLength is the minimum accepted slug length.
const MinLength = 4

// Slugify converts s into a tag slug, or "" when the result would be
// shorter than MinLength.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	out := b.String()
	if len(out) < MinLength {
		return ""
	}
	return out
}

// IsStopWord reports whether s (already slugified) is on the generic-term
// stop list or the deployment blocklist.
func IsStopWord(s string) bool {
	_, ok := stopWords[s]
	if ok {
		return true
	}
	blockMu.RLock()
	defer blockMu.RUnlock()
	_, ok = blocklist[s]
	return ok
}

// FilterTags slugifies every candidate, drops empties and stop-words,
// de-duplicates and returns the result sorted ascending.
func FilterTags(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		t := Slugify(c)
		if t == "" || IsStopWord(t) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
