// Package cos provides common low-level types and utilities shared by
// every azrael component.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"strconv"
	"unsafe"

	"github.com/OneOfOne/xxhash"
)

const (
	// MinAIDLen/MaxAIDLen bound an AID per §3: "set [a-zA-Z0-9_],
	// length 1..32".
	MinAIDLen = 1
	MaxAIDLen = 32
)

// IsValidAID reports whether s is a well-formed AID: 1..32 characters
// from [a-zA-Z0-9_]. Template names, fragment names, and
// booster/factory part names are all AIDs.
func IsValidAID(s string) bool {
	l := len(s)
	if l < MinAIDLen || l > MaxAIDLen {
		return false
	}
	for i := range l {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// HashPair derives a short, stable, order-independent digest of two
// object IDs - used by the constraint registry (igor) to build the
// identity key (contype, sorted(rb_a,rb_b), aid), mirroring the
// teacher's use of xxhash for compact derived keys (cos.HashK8sProxyID).
func HashPair(a, b string) uint64 {
	if a > b {
		a, b = b, a
	}
	h := xxhash.New64()
	_, _ = h.WriteString(a)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(b)
	return h.Sum64()
}

// HashString derives a short stable digest of a single string key.
func HashString(s string) uint64 {
	return xxhash.Checksum64(UnsafeB(s))
}

// HashKey renders a uint64 digest as a compact base-36 string, used to
// build buntdb keys that must sort and compare cheaply.
func HashKey(h uint64) string { return strconv.FormatUint(h, 36) }

// UnsafeB and UnsafeS perform zero-copy string<->[]byte conversions
// for the hot hashing paths above; the returned slice/string must not
// be mutated nor retained past the lifetime of the source.
func UnsafeB(s string) []byte { return unsafe.Slice(unsafe.StringData(s), len(s)) }
func UnsafeS(b []byte) string { return unsafe.String(unsafe.SliceData(b), len(b)) }
