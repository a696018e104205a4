package clerk

import (
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/wire"
)

type setForceReq struct {
	ObjID string     `json:"obj_id"`
	Force aztype.Vec3 `json:"force"`
	RPos  aztype.Vec3 `json:"rpos"`
}

// handleSetForce computes torque=rpos×force and enqueues a direct_force
// command, already expressed in world frame (§4.8).
func (g *Gateway) handleSetForce(data []byte) wire.Reply {
	var req setForceReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("set_force: %v", err)
	}
	torque := req.RPos.Cross(req.Force)
	if err := g.cmdq.AddDirectForce(aztype.CmdForceData{ObjID: req.ObjID, Force: req.Force, Torque: torque}); err != nil {
		return wire.Err("set_force: %v", err)
	}
	return wire.OK(nil)
}

type controlPartsReq struct {
	ObjID        string             `json:"obj_id"`
	CmdBoosters  map[string]float64 `json:"cmd_boosters"`
	CmdFactories map[string]float64 `json:"cmd_factories"`
}

func (g *Gateway) handleControlParts(data []byte) wire.Reply {
	var req controlPartsReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("control_parts: %v", err)
	}
	spawned, err := g.controlParts(req)
	if err != nil {
		return wire.Err("control_parts: %v", err)
	}
	return wire.OK(map[string][]string{"obj_ids": spawned})
}

// controlParts is the most involved Gateway dispatch (§4.8): it loads
// the object document, validates every referenced part exists, tallies
// net booster force/torque in the object's local frame, and computes
// world-frame spawn parameters for each triggered factory.
func (g *Gateway) controlParts(req controlPartsReq) ([]string, error) {
	doc, found, err := g.objs.GetDocument(req.ObjID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, cos.NewErrNotFound("object %q", req.ObjID)
	}

	for name := range req.CmdBoosters {
		if _, ok := doc.Template.Boosters[name]; !ok {
			return nil, cos.NewErrValidation("booster %q not present on object %q", name, req.ObjID)
		}
	}
	for name := range req.CmdFactories {
		if _, ok := doc.Template.Factories[name]; !ok {
			return nil, cos.NewErrValidation("factory %q not present on object %q", name, req.ObjID)
		}
	}

	if len(req.CmdBoosters) > 0 {
		var netForce, netTorque aztype.Vec3
		for name, force := range req.CmdBoosters {
			b := doc.Template.Boosters[name]
			clamped := b.Clamp(force)
			b.Force = clamped
			doc.Template.Boosters[name] = b

			fvec := b.Direction.Scale(clamped)
			netForce = netForce.Add(fvec)
			netTorque = netTorque.Add(b.Pos.Cross(fvec))
		}
		if err := g.objs.PutDocument(doc); err != nil {
			return nil, err
		}
		if err := g.cmdq.AddBoosterForce(aztype.CmdForceData{
			ObjID:  req.ObjID,
			Force:  netForce,
			Torque: netTorque,
		}); err != nil {
			return nil, err
		}
	}

	if len(req.CmdFactories) == 0 {
		return nil, nil
	}

	rb := doc.RigidBody()
	specs := make([]objstore.SpawnSpec, 0, len(req.CmdFactories))
	for name, exitSpeed := range req.CmdFactories {
		f := doc.Template.Factories[name]
		speed := exitSpeed
		if speed < f.ExitMin {
			speed = f.ExitMin
		}
		if speed > f.ExitMax {
			speed = f.ExitMax
		}

		pos := rb.Position.Add(rb.Rotation.Rotate(f.Pos))
		vel := rb.VelocityLin.Add(rb.Rotation.Rotate(f.Direction).Scale(speed))
		rot := rb.Rotation

		specs = append(specs, objstore.SpawnSpec{
			TemplateID: string(f.TemplateID),
			RB: &aztype.RigidBodyPatch{
				Position:    &pos,
				VelocityLin: &vel,
				Rotation:    &rot,
			},
		})
	}

	return g.objs.Spawn(specs)
}
