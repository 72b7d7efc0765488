// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

// Package principal normalizes account identifiers before lookup and
// lockout keying.
//
// # Why normalize?
//
// Usernames are case-insensitive, and the lockout tracker keys its failure
// counters by username. Without a single canonical form, "Owner" and
// "owner" would accumulate failures in separate buckets and the throttle
// could be sidestepped by toggling case or using Unicode look-alike forms.
package principal

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// caseFolder lowercases without locale-specific surprises (e.g. Turkish İ).
var caseFolder = cases.Lower(language.Und)

// Normalize converts a raw username into its canonical form.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (folds compatibility forms: ﬁ → fi, ① → 1).
// 3. Lowercases using Unicode case folding.
//
// The result is the only form ever handed to the principal store and the
// lockout tracker.
func Normalize(username string) string {
	trimmed := strings.TrimSpace(username)
	folded := norm.NFKC.String(trimmed)
	return caseFolder.String(folded)
}
