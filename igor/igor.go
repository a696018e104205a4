// Package igor implements the Constraint Registry (C5, §4.5): a
// buntdb-backed set of constraints with a write-through, in-memory
// cache that getConstraints and uniquePairs read from, accelerated by
// a probabilistic fast-reject membership test - the same "skip the
// exact lookup when we can cheaply prove absence" idea as the
// teacher's cmn/prob Bloom filter, here a cuckoo filter from the pack
// (github.com/seiflotfy/cuckoofilter) since it also supports deletion,
// which a live constraint set needs.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package igor

import (
	"sync"

	cuckoo "github.com/seiflotfy/cuckoofilter"
	jsoniter "github.com/json-iterator/go"

	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/cmn/debug"
	"github.com/azraelhq/azrael/kvs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "con:"

const cuckooCapacity = 1 << 16

// identKey derives the identity key (contype, sorted(rb_a,rb_b), aid)
// (§4.5): the body pair is folded into a single order-independent
// digest via cos.HashPair so the key does not depend on caller-side
// sort order, then rendered compact via cos.HashKey.
func identKey(contype aztype.ConType, rbA, rbB string, aid aztype.AID) string {
	return string(contype) + "|" + cos.HashKey(cos.HashPair(rbA, rbB)) + "|" + string(aid)
}

// Registry is the Constraint Registry.
type Registry struct {
	store *kvs.Store

	mu     sync.RWMutex
	cache  map[string]aztype.Constraint // identKey -> constraint
	byBody map[string]map[string]bool  // bodyID -> set of identKeys
	filter *cuckoo.Filter               // fast-reject over body IDs present in the cache
}

func New(store *kvs.Store) (*Registry, error) {
	r := &Registry{store: store}
	if _, err := r.UpdateLocalCache(); err != nil {
		return nil, err
	}
	return r, nil
}

// AddConstraints upserts with set semantics and returns the count
// newly inserted (§4.5).
func (r *Registry) AddConstraints(constraints []aztype.Constraint) (int, error) {
	inserted := 0
	for _, c := range constraints {
		c = c.Normalised()
		contype, rbA, rbB, aid := c.IdentityKey()
		key := identKey(contype, rbA, rbB, aid)

		b, err := json.Marshal(c)
		if err != nil {
			return inserted, err
		}

		r.mu.Lock()
		_, existed := r.cache[key]
		r.mu.Unlock()

		if err := r.store.Set(keyPrefix+key, string(b)); err != nil {
			return inserted, err
		}
		r.putInCache(key, c)
		if !existed {
			inserted++
		}
	}
	return inserted, nil
}

// RemoveConstraints deletes by identity key and returns the count
// actually deleted (§4.5).
func (r *Registry) RemoveConstraints(constraints []aztype.Constraint) (int, error) {
	deleted := 0
	for _, c := range constraints {
		c = c.Normalised()
		contype, rbA, rbB, aid := c.IdentityKey()
		key := identKey(contype, rbA, rbB, aid)

		r.mu.RLock()
		_, existed := r.cache[key]
		r.mu.RUnlock()
		if !existed {
			continue
		}
		if err := r.store.Delete(keyPrefix + key); err != nil {
			return deleted, err
		}
		r.removeFromCache(key, c)
		deleted++
	}
	return deleted, nil
}

// GetConstraints returns every cached constraint featuring at least
// one of the given body IDs, or every constraint if bodyIDs is nil
// (§4.5: "|all"). r.filter, maintained incrementally by
// putInCache/removeFromCache/UpdateLocalCache, lets a bodyID that
// appears in no cached constraint be rejected in O(1) without touching
// byBody at all; a filter hit still falls through to the exact byBody
// lookup, since a cuckoo filter can false-positive but never
// false-negative.
func (r *Registry) GetConstraints(bodyIDs []string) []aztype.Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if bodyIDs == nil {
		out := make([]aztype.Constraint, 0, len(r.cache))
		for _, c := range r.cache {
			out = append(out, c)
		}
		return out
	}

	seen := map[string]bool{}
	var out []aztype.Constraint
	for _, bodyID := range bodyIDs {
		if r.filter == nil || !r.filter.Lookup(cos.UnsafeB(bodyID)) {
			continue
		}
		for key := range r.byBody[bodyID] {
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r.cache[key])
		}
	}
	return out
}

// UniquePairs returns the set of unordered body-ID pairs linked by at
// least one cached constraint (§4.5).
func (r *Registry) UniquePairs() [][2]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[[2]string]bool{}
	var out [][2]string
	for _, c := range r.cache {
		if c.RBB == "" {
			continue
		}
		a, b := c.RBA, c.RBB
		if a > b {
			a, b = b, a
		}
		pair := [2]string{a, b}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		out = append(out, pair)
	}
	return out
}

// UpdateLocalCache reloads the cache from the store and returns its
// resulting size (§4.5).
func (r *Registry) UpdateLocalCache() (int, error) {
	cache := map[string]aztype.Constraint{}
	byBody := map[string]map[string]bool{}

	err := r.store.AscendPrefix(keyPrefix, func(key, val string) bool {
		var c aztype.Constraint
		if jerr := json.Unmarshal([]byte(val), &c); jerr != nil {
			return true
		}
		k := key[len(keyPrefix):]
		cache[k] = c
		for _, body := range c.Bodies() {
			if byBody[body] == nil {
				byBody[body] = map[string]bool{}
			}
			byBody[body][k] = true
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	filter := cuckoo.NewFilter(uint(max(2*len(byBody), cuckooCapacity)))
	for body := range byBody {
		filter.InsertUnique(cos.UnsafeB(body))
	}

	r.mu.Lock()
	r.cache = cache
	r.byBody = byBody
	r.filter = filter
	r.mu.Unlock()

	return len(cache), nil
}

func (r *Registry) putInCache(key string, c aztype.Constraint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = map[string]aztype.Constraint{}
		r.byBody = map[string]map[string]bool{}
		r.filter = cuckoo.NewFilter(cuckooCapacity)
	}
	r.cache[key] = c
	for _, body := range c.Bodies() {
		if r.byBody[body] == nil {
			r.byBody[body] = map[string]bool{}
		}
		r.byBody[body][key] = true
		r.filter.InsertUnique(cos.UnsafeB(body))
	}
}

func (r *Registry) removeFromCache(key string, c aztype.Constraint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, key)
	for _, body := range c.Bodies() {
		if set := r.byBody[body]; set != nil {
			delete(set, key)
			if len(set) == 0 {
				delete(r.byBody, body)
				r.filter.Delete(cos.UnsafeB(body))
			}
		}
	}
	_, stillPresent := r.cache[key]
	debug.Assert(!stillPresent, "igor: key survived removeFromCache")
}

