// Object instance document (§3).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

// ObjectDoc is the per-instance document owned by the Object Store
// (§3): a template snapshot (whose rbs carries the authoritative
// rigid-body state of this instance), a version counter, custom data,
// and the opaque asset-store retrieval handle.
type ObjectDoc struct {
	ObjID      string   `json:"obj_id"`
	TemplateID AID      `json:"template_id"`
	Version    int      `json:"version"`
	Template   Template `json:"template"`
	Custom     string   `json:"custom"`
	URLFrag    string   `json:"url_frag"`
}

// RigidBody returns the instance's authoritative rigid-body state,
// with Version overwritten by the document's own version counter per
// §4.4 getRigidBodies: "reconstructed from template.rbs with its
// version field overwritten by the document's version".
func (d *ObjectDoc) RigidBody() RigidBody {
	rb := d.Template.RB.Clone()
	rb.Version = d.Version
	return rb
}

// FragmentView is the bandwidth-efficient per-fragment projection
// returned by getFragments (§4.4): no geometry bytes, just pose plus
// the asset-store handle to fetch them.
type FragmentView struct {
	Scale    float64 `json:"scale"`
	Position Vec3    `json:"position"`
	Rotation Quat    `json:"rotation"`
	FragType string  `json:"fragtype"`
	URLFrag  string  `json:"url_frag"`
}

// ObjectState is the getObjectStates projection (§4.4): fragments by
// name plus a trimmed rigid-body view, intended for a renderer.
type ObjectState struct {
	Frag map[string]FragmentState `json:"frag"`
	RB   RigidBodyState            `json:"rbs"`
}

type FragmentState struct {
	Scale    float64 `json:"scale"`
	Position Vec3    `json:"position"`
	Rotation Quat    `json:"rotation"`
}

type RigidBodyState struct {
	Scale       float64 `json:"scale"`
	Position    Vec3    `json:"position"`
	Rotation    Quat    `json:"rotation"`
	VelocityLin Vec3    `json:"velocity_lin"`
	VelocityRot Vec3    `json:"velocity_rot"`
	Version     int     `json:"version"`
}
