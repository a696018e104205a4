// Package assets specifies the contract the core consumes from the
// Asset Store (Dibbler, C2, §4.2) and ships a local, in-memory adapter
// satisfying it. The Asset Store itself - on-disk layout, replication,
// cloud backends - is an explicit external collaborator (§1): the core
// only needs the seam below, never the implementation behind it.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package assets

import "github.com/azraelhq/azrael/aztype"

// Store is the Asset Store contract (§4.2). The core treats url_frag
// as opaque - it never inspects URL structure.
type Store interface {
	// Put stores each fragment's files under a path scoped by the
	// template AID and returns an opaque retrieval handle.
	Put(templateAID string, fragments map[string]aztype.FragmentMeta) (urlFrag string, err error)

	// SpawnInstance copies a template's assets to a freshly
	// instance-scoped path and returns its own opaque handle.
	SpawnInstance(objID, templateAID string) (urlFrag string, err error)

	// UpdateFragments performs the per-fragment file put/del implied
	// by a setFragments call (§4.4.2) against an instance's assets.
	UpdateFragments(objID string, updates map[string]aztype.FragUpdate) error

	// DeleteInstance removes every asset scoped to objID.
	DeleteInstance(objID string) error

	// Get resolves opaque urls to their stored file sets; a missing
	// url maps to (nil, false).
	Get(urls []string) (map[string]map[string][]byte, error)
}

// ErrNoSuchTemplate is returned by SpawnInstance when the template AID
// was never Put.
type ErrNoSuchTemplate struct{ AID string }

func (e *ErrNoSuchTemplate) Error() string { return "asset store: no such template " + e.AID }
