// Package idalloc implements the ID Allocator (C7, §4.7): a monotone,
// never-reused object-ID generator. The spec leaves the implementation
// detail open ("contract is uniqueness across the process lifetime of
// the data store") but scenario 3 (§8) requires string IDs "1", "2",
// ... in allocation order, which rules out a random/short-ID generator
// (the teacher's own cos.GenUUID/shortid) - so this is a persisted
// atomic counter instead, grounded in the same "single authoritative
// counter key" idea as the teacher's fs/persistent_md.go version field.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package idalloc

import (
	"strconv"
	"sync"

	"github.com/azraelhq/azrael/cmn/debug"
	"github.com/azraelhq/azrael/kvs"
)

const counterKey = "idalloc:counter"

// Allocator hands out strictly monotone, never-reused object IDs.
type Allocator struct {
	store *kvs.Store
	mu    sync.Mutex
	next  uint64
}

func New(store *kvs.Store) (*Allocator, error) {
	a := &Allocator{store: store}
	v, found, err := store.Get(counterKey)
	if err != nil {
		return nil, err
	}
	if found {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		a.next = n
	}
	return a, nil
}

// GetUniqueObjectIDs allocates n strictly monotone IDs in ascending
// order, e.g. ["1","2","3"] (§4.7, §8 scenario 3).
func (a *Allocator) GetUniqueObjectIDs(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, n)
	for i := range n {
		a.next++
		ids[i] = strconv.FormatUint(a.next, 10)
	}
	if err := a.store.Set(counterKey, strconv.FormatUint(a.next, 10)); err != nil {
		a.next -= uint64(n)
		return nil, err
	}
	debug.Assert(len(ids) == n, "idalloc: short allocation")
	return ids, nil
}
