// Package objstore implements the Object Store (C4, §4.4): spawned
// instances, their rigid-body and fragment state, and the bridge from
// every mutating call to the Command Queue the Physics Worker drains.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package objstore

import (
	"math"
	"sort"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/cmn/debug"
	"github.com/azraelhq/azrael/cmn/nlog"
	"github.com/azraelhq/azrael/idalloc"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "obj:"

const maxCustomBytes = 65536

const spawnConcurrency = 8

// CommandQueue is the subset of the Command Queue (C6) the Object
// Store drives; kept as a narrow interface so objstore never imports
// the concrete cmdqueue package.
type CommandQueue interface {
	AddSpawn(aztype.CmdSpawnData) error
	AddRemove(objID string) error
	AddModify(aztype.CmdModifyData) error
}

// SpawnSpec is one requested instance in a spawn() call (§4.4): an
// optional rigid-body overlay applied onto the template's own rbs
// before the instance document is written.
type SpawnSpec struct {
	TemplateID string
	RB         *aztype.RigidBodyPatch
}

// Store is the Object Store.
type Store struct {
	store    *kvs.Store
	registry *registry.Registry
	assets   assets.Store
	idalloc  *idalloc.Allocator
	cmdq     CommandQueue
}

func New(store *kvs.Store, reg *registry.Registry, as assets.Store, alloc *idalloc.Allocator, cmdq CommandQueue) *Store {
	return &Store{store: store, registry: reg, assets: as, idalloc: alloc, cmdq: cmdq}
}

func (s *Store) putDoc(d *aztype.ObjectDoc) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.store.Set(keyPrefix+d.ObjID, string(b))
}

func (s *Store) getDoc(objID string) (*aztype.ObjectDoc, bool, error) {
	v, found, err := s.store.Get(keyPrefix + objID)
	if err != nil || !found {
		return nil, found, err
	}
	var d aztype.ObjectDoc
	if err := json.Unmarshal([]byte(v), &d); err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// GetDocument exposes the raw object document for callers that need
// more than the read projections above - namely the Gateway's
// control_parts handler, which mutates booster/factory state directly
// on the template snapshot (§4.8).
func (s *Store) GetDocument(objID string) (*aztype.ObjectDoc, bool, error) {
	return s.getDoc(objID)
}

// PutDocument persists a document obtained from GetDocument.
func (s *Store) PutDocument(d *aztype.ObjectDoc) error {
	return s.putDoc(d)
}

// Writeback installs the Physics Worker's new rigid-body state onto an
// existing object document and reports whether the document still
// existed. It never creates a document - the Physics Worker must only
// update, never upsert (§4.9, §9 open question resolution). rb's own
// Version field is ignored: the document's version is the sole
// authority and is never touched by a physics writeback.
func (s *Store) Writeback(objID string, rb aztype.RigidBody) (bool, error) {
	return s.store.UpdateIfExists(keyPrefix+objID, func(old string) (string, error) {
		var d aztype.ObjectDoc
		if err := json.Unmarshal([]byte(old), &d); err != nil {
			return "", err
		}
		version := d.Version
		d.Template.RB = rb
		d.Version = version
		b, err := json.Marshal(d)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// eachDoc visits either the requested objIDs, in the given order, or,
// when objIDs is nil, every object in store order (the "|all" variant
// every §4.4 read op accepts).
func (s *Store) eachDoc(objIDs []string, fn func(objID string, d *aztype.ObjectDoc, found bool) error) error {
	if objIDs != nil {
		for _, id := range objIDs {
			d, found, err := s.getDoc(id)
			if err != nil {
				return err
			}
			if err := fn(id, d, found); err != nil {
				return err
			}
		}
		return nil
	}
	return s.store.AscendPrefix(keyPrefix, func(key, val string) bool {
		var d aztype.ObjectDoc
		if err := json.Unmarshal([]byte(val), &d); err != nil {
			nlog.Warningf("objstore: corrupt document at %s: %v", key, err)
			return true
		}
		if err := fn(d.ObjID, &d, true); err != nil {
			nlog.Warningf("objstore: %v", err)
		}
		return true
	})
}

// Spawn resolves templates, allocates object IDs, and materialises one
// document (plus a queued spawn command) per spec (§4.4). If a single
// Asset Store call fails, that one spec is skipped and logged; the
// rest of the batch proceeds.
func (s *Store) Spawn(specs []SpawnSpec) ([]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	templates := make(map[string]aztype.Template, len(specs))
	for _, sp := range specs {
		if _, ok := templates[sp.TemplateID]; ok {
			continue
		}
		tpl, _, err := s.registry.GetOne(sp.TemplateID)
		if err != nil {
			return nil, err
		}
		templates[sp.TemplateID] = tpl
	}

	ids, err := s.idalloc.GetUniqueObjectIDs(len(specs))
	if err != nil {
		return nil, err
	}
	debug.Assert(len(ids) == len(specs), "objstore: id/spec count mismatch")

	// Each spec's Asset Store round trip is independent; fan them out
	// bounded, same shape as the teacher's per-target copy fan-out.
	results := make([]string, len(specs))
	g := new(errgroup.Group)
	g.SetLimit(spawnConcurrency)
	for i, sp := range specs {
		i, sp := i, sp
		g.Go(func() error {
			objID := ids[i]
			tpl := templates[sp.TemplateID].Clone()

			if sp.RB != nil {
				if err := sp.RB.Validate(); err != nil {
					nlog.Warningf("spawn %s: rejected rbs overlay: %v", objID, err)
					return nil
				}
				sp.RB.Apply(&tpl.RB)
			}

			urlFrag, err := s.assets.SpawnInstance(objID, sp.TemplateID)
			if err != nil {
				nlog.Warningf("spawn %s: asset store spawnInstance failed: %v", objID, err)
				return nil
			}

			doc := aztype.ObjectDoc{
				ObjID:      objID,
				TemplateID: aztype.AID(sp.TemplateID),
				Version:    0,
				Template:   tpl,
				URLFrag:    urlFrag,
			}
			if err := s.putDoc(&doc); err != nil {
				return err
			}
			if err := s.cmdq.AddSpawn(aztype.CmdSpawnData{
				ObjID: objID,
				RB:    doc.RigidBody(),
				AABBs: ComputeAABBs(tpl.RB),
			}); err != nil {
				return err
			}
			results[i] = objID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(specs))
	for _, id := range results {
		if id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

// RemoveObjects enqueues a remove command and deletes both the
// document and its assets; non-existent IDs are accepted silently
// (§4.4).
func (s *Store) RemoveObjects(objIDs []string) error {
	for _, id := range objIDs {
		if err := s.cmdq.AddRemove(id); err != nil {
			return err
		}
		if err := s.assets.DeleteInstance(id); err != nil {
			return err
		}
		if err := s.store.Delete(keyPrefix + id); err != nil {
			return err
		}
	}
	return nil
}

// GetRigidBodies returns {objID -> rbs}, with absent IDs mapped to a
// nil entry (§4.4). objIDs == nil means "all".
func (s *Store) GetRigidBodies(objIDs []string) (map[string]*aztype.RigidBody, error) {
	out := map[string]*aztype.RigidBody{}
	err := s.eachDoc(objIDs, func(objID string, d *aztype.ObjectDoc, found bool) error {
		if !found {
			out[objID] = nil
			return nil
		}
		rb := d.RigidBody()
		out[objID] = &rb
		return nil
	})
	return out, err
}

// SetRigidBodies applies a partial-update patch per object and enqueues
// a modify command for each one that exists; returns the objIDs that
// did not exist (§4.4).
func (s *Store) SetRigidBodies(patches map[string]aztype.RigidBodyPatch) ([]string, error) {
	var missing []string
	for objID, patch := range patches {
		if err := patch.Validate(); err != nil {
			return nil, err
		}
		d, found, err := s.getDoc(objID)
		if err != nil {
			return nil, err
		}
		if !found {
			missing = append(missing, objID)
			continue
		}
		patch.Apply(&d.Template.RB)
		if err := s.putDoc(d); err != nil {
			return nil, err
		}
		if err := s.cmdq.AddModify(aztype.CmdModifyData{
			ObjID: objID,
			Patch: patch,
			AABBs: ComputeAABBs(d.Template.RB),
		}); err != nil {
			return nil, err
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// GetObjectStates returns the bandwidth-efficient rendering projection
// (§4.4): one entry per fragment, plus a trimmed rigid-body view.
func (s *Store) GetObjectStates(objIDs []string) (map[string]*aztype.ObjectState, error) {
	out := map[string]*aztype.ObjectState{}
	err := s.eachDoc(objIDs, func(objID string, d *aztype.ObjectDoc, found bool) error {
		if !found {
			out[objID] = nil
			return nil
		}
		rb := d.RigidBody()
		frag := make(map[string]aztype.FragmentState, len(d.Template.Fragments))
		for name, fm := range d.Template.Fragments {
			frag[name] = aztype.FragmentState{Scale: fm.Scale, Position: fm.Position, Rotation: fm.Rotation}
		}
		out[objID] = &aztype.ObjectState{
			Frag: frag,
			RB: aztype.RigidBodyState{
				Scale:       rb.Scale,
				Position:    rb.Position,
				Rotation:    rb.Rotation,
				VelocityLin: rb.VelocityLin,
				VelocityRot: rb.VelocityRot,
				Version:     rb.Version,
			},
		}
		return nil
	})
	return out, err
}

// GetFragments returns the per-object fragment views (no geometry
// bytes), or nil for an absent object (§4.4).
func (s *Store) GetFragments(objIDs []string) (map[string]map[string]aztype.FragmentView, error) {
	out := map[string]map[string]aztype.FragmentView{}
	err := s.eachDoc(objIDs, func(objID string, d *aztype.ObjectDoc, found bool) error {
		if !found {
			out[objID] = nil
			return nil
		}
		views := make(map[string]aztype.FragmentView, len(d.Template.Fragments))
		for name, fm := range d.Template.Fragments {
			views[name] = aztype.FragmentView{
				Scale:    fm.Scale,
				Position: fm.Position,
				Rotation: fm.Rotation,
				FragType: fm.FragType,
				URLFrag:  d.URLFrag,
			}
		}
		out[objID] = views
		return nil
	})
	return out, err
}

// SetFragments applies the per-object, per-fragment op-records of
// setFragments (§4.4.2) and returns the count of objects for which at
// least one update succeeded.
// invalid reports "objID/fragName" for every per-fragment patch that
// failed to validate; the rest of the batch still applies (§4.4's
// set_custom skip-invalid-report-them shape, generalised to fragment
// patches since §4.4.2 is silent on mixed-batch semantics).
func (s *Store) SetFragments(updates map[string]map[string]aztype.FragUpdate) (updated int, invalid []string, err error) {
	for objID, fragUpdates := range updates {
		d, found, gerr := s.getDoc(objID)
		if gerr != nil {
			return updated, invalid, gerr
		}
		if !found {
			continue
		}

		assetUpdates := make(map[string]aztype.FragUpdate, len(fragUpdates))
		anyApplied := false
		versionBumped := false

		for fragName, u := range fragUpdates {
			existing, has := d.Template.Fragments[fragName]
			var existingPtr *aztype.FragmentMeta
			if has {
				existingPtr = &existing
			}
			result, removed, geomChanged, aerr := aztype.ApplyFragUpdate(existingPtr, u)
			if aerr != nil {
				nlog.Warningf("setFragments %s/%s: %v", objID, fragName, aerr)
				invalid = append(invalid, objID+"/"+fragName)
				continue
			}
			if removed {
				delete(d.Template.Fragments, fragName)
			} else {
				d.Template.Fragments[fragName] = *result
			}
			assetUpdates[fragName] = u
			anyApplied = true
			if geomChanged {
				versionBumped = true
			}
		}

		if !anyApplied {
			continue
		}
		if err := s.assets.UpdateFragments(objID, assetUpdates); err != nil {
			return updated, invalid, err
		}
		if versionBumped {
			d.Version++
		}
		if err := s.putDoc(d); err != nil {
			return updated, invalid, err
		}
		updated++
	}
	return updated, invalid, nil
}

func (s *Store) GetTemplateID(objID string) (string, error) {
	d, found, err := s.getDoc(objID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", cos.NewErrNotFound("object %q", objID)
	}
	return string(d.TemplateID), nil
}

// GetAllObjectIDs returns every object ID in allocation order (§4.4
// supplement, §8 scenario 3: idalloc hands out "1","2","3",... and
// getAllObjectIDs must reflect that order, not the lexical order of
// the backing store's keys, where "10" would sort before "2").
func (s *Store) GetAllObjectIDs() ([]string, error) {
	var ids []string
	err := s.store.AscendPrefix(keyPrefix, func(key, val string) bool {
		ids = append(ids, key[len(keyPrefix):])
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, erri := strconv.ParseUint(ids[i], 10, 64)
		nj, errj := strconv.ParseUint(ids[j], 10, 64)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// SetCustomData writes per-object custom strings; an object reported
// invalid (oversize custom blob) is skipped but does not fail the
// batch (§4.4).
func (s *Store) SetCustomData(values map[string]string) ([]string, error) {
	var invalid []string
	for objID, custom := range values {
		if len(custom) >= maxCustomBytes {
			invalid = append(invalid, objID)
			continue
		}
		d, found, err := s.getDoc(objID)
		if err != nil {
			return nil, err
		}
		if !found {
			invalid = append(invalid, objID)
			continue
		}
		d.Custom = custom
		if err := s.putDoc(d); err != nil {
			return nil, err
		}
	}
	sort.Strings(invalid)
	return invalid, nil
}

func (s *Store) GetCustomData(objIDs []string) (map[string]*string, error) {
	out := map[string]*string{}
	err := s.eachDoc(objIDs, func(objID string, d *aztype.ObjectDoc, found bool) error {
		if !found {
			out[objID] = nil
			return nil
		}
		custom := d.Custom
		out[objID] = &custom
		return nil
	})
	return out, err
}

// ComputeAABBs implements §4.4.1's per-shape bounding-box rule.
func ComputeAABBs(rb aztype.RigidBody) []aztype.AABB {
	var hasPlane bool
	for _, s := range rb.CShapes {
		if s.Kind == aztype.ShapePlane {
			hasPlane = true
		}
	}
	if hasPlane {
		return []aztype.AABB{{}}
	}

	aabbs := make([]aztype.AABB, 0, len(rb.CShapes))
	for _, s := range rb.CShapes {
		switch s.Kind {
		case aztype.ShapeEmpty:
			continue
		case aztype.ShapeSphere:
			aabbs = append(aabbs, aztype.AABB{
				Center:      rb.Rotation.Rotate(s.Position),
				HalfExtents: aztype.Vec3{s.Radius, s.Radius, s.Radius},
			})
		case aztype.ShapeBox:
			h := math.Max(s.HalfX, math.Max(s.HalfY, s.HalfZ)) * math.Sqrt(3.1)
			aabbs = append(aabbs, aztype.AABB{
				Center:      rb.Rotation.Rotate(s.Position),
				HalfExtents: aztype.Vec3{h, h, h},
			})
		case aztype.ShapePlane:
			aabbs = append(aabbs, aztype.AABB{})
		}
	}
	return aabbs
}
