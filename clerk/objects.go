package clerk

import (
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/wire"
)

type spawnSpecReq struct {
	TemplateID string                  `json:"template_id"`
	RB         *aztype.RigidBodyPatch `json:"rbs,omitempty"`
}

type spawnReq struct {
	Specs []spawnSpecReq `json:"specs"`
}

func (g *Gateway) handleSpawn(data []byte) wire.Reply {
	var req spawnReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("spawn: %v", err)
	}
	specs := make([]objstore.SpawnSpec, len(req.Specs))
	for i, s := range req.Specs {
		specs[i] = objstore.SpawnSpec{TemplateID: s.TemplateID, RB: s.RB}
	}
	ids, err := g.objs.Spawn(specs)
	if err != nil {
		return wire.Err("spawn: %v", err)
	}
	return wire.OK(map[string][]string{"obj_ids": ids})
}

type removeObjectReq struct {
	ObjID string `json:"obj_id"`
}

func (g *Gateway) handleRemoveObject(data []byte) wire.Reply {
	var req removeObjectReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("remove_object: %v", err)
	}
	if err := g.objs.RemoveObjects([]string{req.ObjID}); err != nil {
		return wire.Err("remove_object: %v", err)
	}
	return wire.OK(nil)
}

type removeObjectsReq struct {
	ObjIDs []string `json:"obj_ids"`
}

func (g *Gateway) handleRemoveObjects(data []byte) wire.Reply {
	var req removeObjectsReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("remove_objects: %v", err)
	}
	if err := g.objs.RemoveObjects(req.ObjIDs); err != nil {
		return wire.Err("remove_objects: %v", err)
	}
	return wire.OK(nil)
}

func (g *Gateway) handleGetAllObjIDs() wire.Reply {
	ids, err := g.objs.GetAllObjectIDs()
	if err != nil {
		return wire.Err("get_all_objids: %v", err)
	}
	return wire.OK(map[string][]string{"obj_ids": ids})
}

func (g *Gateway) handleGetObjectStates(data []byte) wire.Reply {
	var req idList
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_object_states: %v", err)
	}
	states, err := g.objs.GetObjectStates(req.resolve())
	if err != nil {
		return wire.Err("get_object_states: %v", err)
	}
	return wire.OK(states)
}

func (g *Gateway) handleGetRigidBodies(data []byte) wire.Reply {
	var req idList
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_rigid_bodies: %v", err)
	}
	rbs, err := g.objs.GetRigidBodies(req.resolve())
	if err != nil {
		return wire.Err("get_rigid_bodies: %v", err)
	}
	return wire.OK(rbs)
}

type setRigidBodiesReq struct {
	Patches map[string]aztype.RigidBodyPatch `json:"patches"`
}

func (g *Gateway) handleSetRigidBodies(data []byte) wire.Reply {
	var req setRigidBodiesReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("set_rigid_bodies: %v", err)
	}
	missing, err := g.objs.SetRigidBodies(req.Patches)
	if err != nil {
		return wire.Err("set_rigid_bodies: %v", err)
	}
	return wire.OK(map[string][]string{"missing": missing})
}

func (g *Gateway) handleGetFragments(data []byte) wire.Reply {
	var req idList
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_fragments: %v", err)
	}
	frags, err := g.objs.GetFragments(req.resolve())
	if err != nil {
		return wire.Err("get_fragments: %v", err)
	}
	return wire.OK(frags)
}

type setFragmentsReq struct {
	Updates map[string]map[string]aztype.FragUpdate `json:"updates"`
}

func (g *Gateway) handleSetFragments(data []byte) wire.Reply {
	var req setFragmentsReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("set_fragments: %v", err)
	}
	updated, invalid, err := g.objs.SetFragments(req.Updates)
	if err != nil {
		return wire.Err("set_fragments: %v", err)
	}
	return wire.OK(map[string]any{"updated": updated, "invalid": invalid})
}

type setCustomReq struct {
	Values map[string]string `json:"values"`
}

func (g *Gateway) handleSetCustom(data []byte) wire.Reply {
	var req setCustomReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("set_custom: %v", err)
	}
	invalid, err := g.objs.SetCustomData(req.Values)
	if err != nil {
		return wire.Err("set_custom: %v", err)
	}
	return wire.OK(map[string][]string{"invalid": invalid})
}

func (g *Gateway) handleGetCustom(data []byte) wire.Reply {
	var req idList
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_custom: %v", err)
	}
	custom, err := g.objs.GetCustomData(req.resolve())
	if err != nil {
		return wire.Err("get_custom: %v", err)
	}
	return wire.OK(custom)
}
