// FragmentMeta (§3) and the setFragments op-record patch model (§4.4.2).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// FragmentMeta is a named visual piece of an object (§3, glossary).
// In persistence Files is stripped to filename-only keys pointing at
// the Asset Store; the in-memory/spawn-time form carries the bytes.
type FragmentMeta struct {
	FragType string          `json:"fragtype"` // upper-case tag: RAW|DAE|_DEL_|...
	Scale    float64         `json:"scale"`
	Position Vec3            `json:"position"`
	Rotation Quat            `json:"rotation"`
	Files    map[string][]byte `json:"files,omitempty"`
}

// StripFiles returns a copy of fm with file bytes removed but
// filenames retained, the form persisted in an object document (§3:
// "In persistence the files are stripped ... only metadata + filenames
// remain").
func (fm FragmentMeta) StripFiles() FragmentMeta {
	out := fm
	if fm.Files == nil {
		return out
	}
	out.Files = make(map[string][]byte, len(fm.Files))
	for name := range fm.Files {
		out.Files[name] = nil
	}
	return out
}

func (fm *FragmentMeta) Validate() error {
	if fm.FragType == "" {
		return cos.NewErrValidation("fragment fragtype must not be empty")
	}
	if fm.Scale < 0 {
		return cos.NewErrValidation("fragment scale must be >= 0, got %v", fm.Scale)
	}
	return nil
}

// FragOp tags a setFragments per-fragment op-record (§4.4.2).
type FragOp string

const (
	FragOpPut FragOp = "put"
	FragOpMod FragOp = "mod"
	FragOpDel FragOp = "del"
)

// FragUpdate is one fragment's op-record within a setFragments call.
// Pointer fields are "unset" when nil, matching the explicit-patch
// pattern used by RigidBodyPatch.
type FragUpdate struct {
	Op FragOp `json:"op"`

	FragType *string `json:"fragtype,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Position *Vec3    `json:"position,omitempty"`
	Rotation *Quat    `json:"rotation,omitempty"`

	Put map[string][]byte `json:"put,omitempty"`
	Del []string          `json:"del,omitempty"`
}

// fullySpecified reports whether u carries every state field required
// to materialise a brand-new fragment (§4.4.2: "op=put: fragment must
// be fully specified (all state fields + a non-empty put)").
func (u *FragUpdate) fullySpecified() bool {
	return u.FragType != nil && u.Scale != nil && u.Position != nil && u.Rotation != nil && len(u.Put) > 0
}

// ApplyFragUpdate applies one setFragments op-record to the current
// fragment (nil if the fragment does not yet exist), per §4.4.2.
//
// removed=true means the fragment entry must be deleted entirely.
// geometryChanged reports whether fragtype or the file set changed,
// which is the sole trigger for the object's version bump (§3, §8).
func ApplyFragUpdate(existing *FragmentMeta, u FragUpdate) (result *FragmentMeta, removed, geometryChanged bool, err error) {
	switch u.Op {
	case FragOpDel:
		if existing == nil {
			return nil, true, false, nil
		}
		return nil, true, true, nil

	case FragOpPut:
		if !u.fullySpecified() {
			return nil, false, false, cos.NewErrValidation("put must fully specify fragtype, scale, position, rotation, and a non-empty file set")
		}
		fm := &FragmentMeta{
			FragType: *u.FragType,
			Scale:    *u.Scale,
			Position: *u.Position,
			Rotation: *u.Rotation,
			Files:    cloneFiles(u.Put),
		}
		return fm, false, true, nil

	case FragOpMod:
		if existing == nil {
			return nil, false, false, cos.NewErrValidation("mod requires an existing fragment")
		}
		fm := &FragmentMeta{
			FragType: existing.FragType,
			Scale:    existing.Scale,
			Position: existing.Position,
			Rotation: existing.Rotation,
			Files:    cloneFiles(existing.Files),
		}
		geomChanged := false
		if u.FragType != nil && *u.FragType != fm.FragType {
			fm.FragType = *u.FragType
			geomChanged = true
		}
		if u.Scale != nil {
			fm.Scale = *u.Scale
		}
		if u.Position != nil {
			fm.Position = *u.Position
		}
		if u.Rotation != nil {
			fm.Rotation = *u.Rotation
		}
		if len(u.Put) > 0 {
			if fm.Files == nil {
				fm.Files = map[string][]byte{}
			}
			for name, data := range u.Put {
				fm.Files[name] = data
			}
			geomChanged = true
		}
		if len(u.Del) > 0 {
			for _, name := range u.Del {
				if _, ok := fm.Files[name]; ok {
					delete(fm.Files, name)
					geomChanged = true
				}
			}
		}
		return fm, false, geomChanged, nil

	default:
		return nil, false, false, cos.NewErrValidation("unknown fragment op %q", u.Op)
	}
}

func cloneFiles(m map[string][]byte) map[string][]byte {
	if m == nil {
		return nil
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
