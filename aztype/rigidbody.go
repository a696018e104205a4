// RigidBody (§3).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// RigidBody is the physics-bearing record of an object (§3, glossary).
type RigidBody struct {
	Scale       float64                   `json:"scale"`
	IMass       float64                   `json:"imass"`
	Restitution float64                   `json:"restitution"`
	Rotation    Quat                      `json:"rotation"`
	Position    Vec3                      `json:"position"`
	VelocityLin Vec3                      `json:"velocity_lin"`
	VelocityRot Vec3                      `json:"velocity_rot"`
	CShapes     map[string]CollisionShape `json:"cshapes"`
	AxesLockLin Vec3                      `json:"axes_lock_lin"`
	AxesLockRot Vec3                      `json:"axes_lock_rot"`
	Version     int                       `json:"version"`
}

// DefaultRigidBody returns a body at rest at the origin with no
// collision shapes: scale=1, unit mass (imass=1), identity rotation.
func DefaultRigidBody() RigidBody {
	return RigidBody{
		Scale:       1,
		IMass:       1,
		Rotation:    IdentityQuat,
		CShapes:     map[string]CollisionShape{},
		AxesLockLin: Vec3{1, 1, 1},
		AxesLockRot: Vec3{1, 1, 1},
	}
}

// Validate enforces §3/§4.1: non-negativity of
// scale/imass/restitution/radius/half-extents, and the Plane-shape
// exclusivity invariant.
func (rb *RigidBody) Validate() error {
	if rb.Scale < 0 {
		return cos.NewErrValidation("rigid body scale must be >= 0, got %v", rb.Scale)
	}
	if rb.IMass < 0 {
		return cos.NewErrValidation("rigid body imass must be >= 0, got %v", rb.IMass)
	}
	if rb.Restitution < 0 {
		return cos.NewErrValidation("rigid body restitution must be >= 0, got %v", rb.Restitution)
	}
	if err := validateShapeSet(rb.CShapes); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy (the CShapes map must not be aliased
// between a template and an instance, or between two instances spawned
// from the same template).
func (rb RigidBody) Clone() RigidBody {
	out := rb
	out.CShapes = make(map[string]CollisionShape, len(rb.CShapes))
	for k, v := range rb.CShapes {
		out.CShapes[k] = v
	}
	return out
}

// RigidBodyPatch is the explicit, field-level partial-update record
// for RigidBody (§9: "replace reflection-based field iteration with a
// small, explicit patch applier per record kind"). Every field is a
// pointer; a nil field means "leave unchanged".
type RigidBodyPatch struct {
	Scale       *float64                  `json:"scale,omitempty"`
	IMass       *float64                  `json:"imass,omitempty"`
	Restitution *float64                  `json:"restitution,omitempty"`
	Rotation    *Quat                     `json:"rotation,omitempty"`
	Position    *Vec3                     `json:"position,omitempty"`
	VelocityLin *Vec3                     `json:"velocity_lin,omitempty"`
	VelocityRot *Vec3                     `json:"velocity_rot,omitempty"`
	CShapes     map[string]CollisionShape `json:"cshapes,omitempty"`
	AxesLockLin *Vec3                     `json:"axes_lock_lin,omitempty"`
	AxesLockRot *Vec3                     `json:"axes_lock_rot,omitempty"`
}

// Validate checks only the fields that are actually set in the patch,
// against the same rules as RigidBody.Validate.
func (p *RigidBodyPatch) Validate() error {
	if p.Scale != nil && *p.Scale < 0 {
		return cos.NewErrValidation("rigid body scale must be >= 0, got %v", *p.Scale)
	}
	if p.IMass != nil && *p.IMass < 0 {
		return cos.NewErrValidation("rigid body imass must be >= 0, got %v", *p.IMass)
	}
	if p.Restitution != nil && *p.Restitution < 0 {
		return cos.NewErrValidation("rigid body restitution must be >= 0, got %v", *p.Restitution)
	}
	if p.CShapes != nil {
		if err := validateShapeSet(p.CShapes); err != nil {
			return err
		}
	}
	return nil
}

// Apply overlays the set fields of p onto rb, in place, per the
// "partial update: overlay only the keys present" rule used by both
// setRigidBodies (§4.4) and spawn's rbs overlay (§4.4).
func (p *RigidBodyPatch) Apply(rb *RigidBody) {
	if p.Scale != nil {
		rb.Scale = *p.Scale
	}
	if p.IMass != nil {
		rb.IMass = *p.IMass
	}
	if p.Restitution != nil {
		rb.Restitution = *p.Restitution
	}
	if p.Rotation != nil {
		rb.Rotation = *p.Rotation
	}
	if p.Position != nil {
		rb.Position = *p.Position
	}
	if p.VelocityLin != nil {
		rb.VelocityLin = *p.VelocityLin
	}
	if p.VelocityRot != nil {
		rb.VelocityRot = *p.VelocityRot
	}
	if p.CShapes != nil {
		rb.CShapes = make(map[string]CollisionShape, len(p.CShapes))
		for k, v := range p.CShapes {
			rb.CShapes[k] = v
		}
	}
	if p.AxesLockLin != nil {
		rb.AxesLockLin = *p.AxesLockLin
	}
	if p.AxesLockRot != nil {
		rb.AxesLockRot = *p.AxesLockRot
	}
}
