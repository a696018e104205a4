// QueuedCommand (§3), stored by the Command Queue (§4.6) until drained
// by the Physics Worker (§4.9).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

// CmdKind tags a QueuedCommand variant.
type CmdKind string

const (
	CmdSpawn        CmdKind = "spawn"
	CmdRemove       CmdKind = "remove"
	CmdModify       CmdKind = "modify"
	CmdDirectForce  CmdKind = "direct_force"
	CmdBoosterForce CmdKind = "booster_force"
)

// AABB is an axis-aligned bounding box: centre +/- half-extents,
// precomputed by the Object Store at spawn time (§4.4.1).
type AABB struct {
	Center      Vec3 `json:"center"`
	HalfExtents Vec3 `json:"half_extents"`
}

// CmdSpawnData materialises a new body in the Physics Worker's world.
type CmdSpawnData struct {
	ObjID string      `json:"obj_id"`
	RB    RigidBody   `json:"rbs"`
	AABBs []AABB      `json:"aabbs"`
}

// CmdRemoveData deletes a body from the Physics Worker's world.
type CmdRemoveData struct {
	ObjID string `json:"obj_id"`
}

// CmdModifyData overlays a partial rigid-body state onto an existing
// body (§4.4: setRigidBodies also enqueues this).
type CmdModifyData struct {
	ObjID string         `json:"obj_id"`
	Patch RigidBodyPatch `json:"patch"`
	AABBs []AABB         `json:"aabbs,omitempty"`
}

// CmdForceData carries a force/torque pair, applied either in world
// frame (direct_force) or local frame (booster_force) - see §4.8/§4.9
// for the distinction.
type CmdForceData struct {
	ObjID  string `json:"obj_id"`
	Force  Vec3   `json:"force"`
	Torque Vec3   `json:"torque"`
}

// QueuedCommand is the discriminated union persisted by the command
// queue (§3). Exactly one of the payload pointers is non-nil,
// according to Kind.
type QueuedCommand struct {
	Kind CmdKind `json:"kind"`

	Spawn        *CmdSpawnData  `json:"spawn,omitempty"`
	Remove       *CmdRemoveData `json:"remove,omitempty"`
	Modify       *CmdModifyData `json:"modify,omitempty"`
	DirectForce  *CmdForceData  `json:"direct_force,omitempty"`
	BoosterForce *CmdForceData  `json:"booster_force,omitempty"`
}

// ObjID returns the object ID this command targets, regardless of kind.
func (c QueuedCommand) ObjID() string {
	switch c.Kind {
	case CmdSpawn:
		return c.Spawn.ObjID
	case CmdRemove:
		return c.Remove.ObjID
	case CmdModify:
		return c.Modify.ObjID
	case CmdDirectForce:
		return c.DirectForce.ObjID
	case CmdBoosterForce:
		return c.BoosterForce.ObjID
	default:
		return ""
	}
}

// DrainedCommands is dequeueCommands()'s return shape (§4.6):
// everything read-and-removed from the queue in one atomic operation,
// partitioned by kind so the Physics Worker doesn't need to switch on
// each command's tag.
type DrainedCommands struct {
	Spawn        []CmdSpawnData
	Remove       []CmdRemoveData
	Modify       []CmdModifyData
	DirectForce  []CmdForceData
	BoosterForce []CmdForceData
}

func (d DrainedCommands) Empty() bool {
	return len(d.Spawn) == 0 && len(d.Remove) == 0 && len(d.Modify) == 0 &&
		len(d.DirectForce) == 0 && len(d.BoosterForce) == 0
}
