// Package kvs wraps the buntdb-backed storage shared by the Template
// Registry, Object Store, Constraint Registry, and Command Queue
// (§6: "four independent named collections ... plus the Asset Store
// namespace"). Each collection gets its own key prefix within one
// buntdb handle, mirroring the teacher's single persisted-metadata-file
// pattern (fs/persistent_md.go, volume/vmd.go) rather than one handle
// per collection.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package kvs

import (
	"strings"

	"github.com/tidwall/buntdb"
)

// Store is a thin, typed-key wrapper around *buntdb.DB.
type Store struct {
	db *buntdb.DB
}

// Open opens (or creates) the backing buntdb file. Pass ":memory:" for
// an ephemeral, test-friendly in-process store.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get reads one key; found=false if absent.
func (s *Store) Get(key string) (val string, found bool, err error) {
	err = s.db.View(func(tx *buntdb.Tx) error {
		v, e := tx.Get(key)
		if e == buntdb.ErrNotFound {
			return nil
		}
		if e != nil {
			return e
		}
		val, found = v, true
		return nil
	})
	return
}

// Set unconditionally writes key=val.
func (s *Store) Set(key, val string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, val, nil)
		return err
	})
}

// SetIfAbsent writes key=val only if key does not already exist, and
// reports whether the write actually happened - the create-if-absent
// semantics addTemplates relies on.
func (s *Store) SetIfAbsent(key, val string) (inserted bool, err error) {
	err = s.db.Update(func(tx *buntdb.Tx) error {
		if _, e := tx.Get(key); e == nil {
			return nil // already present
		} else if e != buntdb.ErrNotFound {
			return e
		}
		if _, _, e := tx.Set(key, val, nil); e != nil {
			return e
		}
		inserted = true
		return nil
	})
	return
}

// UpdateIfExists rewrites key only if it already exists, never
// creating it - the update-only semantics the Physics Worker's
// writeback requires (§4.9, §9 open question: "writeback must not
// upsert").
func (s *Store) UpdateIfExists(key string, mutate func(old string) (string, error)) (updated bool, err error) {
	err = s.db.Update(func(tx *buntdb.Tx) error {
		old, e := tx.Get(key)
		if e == buntdb.ErrNotFound {
			return nil
		}
		if e != nil {
			return e
		}
		neu, e := mutate(old)
		if e != nil {
			return e
		}
		if _, _, e := tx.Set(key, neu, nil); e != nil {
			return e
		}
		updated = true
		return nil
	})
	return
}

// Delete removes a key; it is not an error if the key is absent.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

// AscendPrefix visits every key with the given prefix in lexical
// order, calling fn(key, value) for each; iteration stops early if fn
// returns false.
func (s *Store) AscendPrefix(prefix string, fn func(key, val string) bool) error {
	return s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(prefix+"*", func(key, val string) bool {
			if !strings.HasPrefix(key, prefix) {
				return false
			}
			return fn(key, val)
		})
	})
}

// DeletePrefixCollecting removes every key with the given prefix
// atomically, calling onEach(key, value) for each one and returning
// the count deleted - used by the Command Queue's
// dequeueCommands "atomic read-and-delete" (§4.6, §5).
func (s *Store) DeletePrefixCollecting(prefix string, onEach func(key, val string)) (int, error) {
	n := 0
	err := s.db.Update(func(tx *buntdb.Tx) error {
		var keys []string
		if e := tx.AscendKeys(prefix+"*", func(key, val string) bool {
			if !strings.HasPrefix(key, prefix) {
				return false
			}
			keys = append(keys, key)
			onEach(key, val)
			return true
		}); e != nil {
			return e
		}
		for _, k := range keys {
			if _, e := tx.Delete(k); e != nil && e != buntdb.ErrNotFound {
				return e
			}
			n++
		}
		return nil
	})
	return n, err
}

// Update runs fn inside a single read-write transaction, for callers
// that need several operations to be atomic together (e.g. a
// Gateway-side read-modify-write of an object document).
func (s *Store) Update(fn func(tx *buntdb.Tx) error) error { return s.db.Update(fn) }
func (s *Store) View(fn func(tx *buntdb.Tx) error) error   { return s.db.View(fn) }
