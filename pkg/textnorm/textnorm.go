// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-supplied text before it is compared or stored.
//
// # Usage
//
// Usernames are compared byte-for-byte by the store, so two visually identical
// names ("é" precomposed and "e" + combining acute) must collapse to one form
// first. Lengths are always counted in Unicode code points.
package textnorm

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Username returns s in Unicode NFC form with control characters removed.
//
// Case is preserved: "Alice" and "alice" remain distinct accounts.
func Username(s string) string {
	t := transform.Chain(transform.RemoveFunc(unicode.IsControl), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return norm.NFC.String(s)
	}
	return result
}

// RuneLen returns the number of Unicode code points in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
