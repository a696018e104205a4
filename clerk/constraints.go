package clerk

import (
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/wire"
)

type addConstraintsReq struct {
	Constraints []aztype.Constraint `json:"constraints"`
}

func (g *Gateway) handleAddConstraints(data []byte) wire.Reply {
	var req addConstraintsReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("add_constraints: %v", err)
	}
	inserted, err := g.igor.AddConstraints(req.Constraints)
	if err != nil {
		return wire.Err("add_constraints: %v", err)
	}
	return wire.OK(map[string]int{"inserted": inserted})
}

type deleteConstraintsReq struct {
	Constraints []aztype.Constraint `json:"constraints"`
}

func (g *Gateway) handleDeleteConstraints(data []byte) wire.Reply {
	var req deleteConstraintsReq
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("delete_constraints: %v", err)
	}
	deleted, err := g.igor.RemoveConstraints(req.Constraints)
	if err != nil {
		return wire.Err("delete_constraints: %v", err)
	}
	return wire.OK(map[string]int{"deleted": deleted})
}

func (g *Gateway) handleGetConstraints(data []byte) wire.Reply {
	var req idList
	if err := wire.DecodeInto(data, &req); err != nil {
		return wire.Err("get_constraints: %v", err)
	}
	// getConstraints reads the cache, which may lag the store by at
	// most one updateLocalCache call; the Gateway refreshes it eagerly
	// before every read (§4.5).
	if _, err := g.igor.UpdateLocalCache(); err != nil {
		return wire.Err("get_constraints: %v", err)
	}
	constraints := g.igor.GetConstraints(req.resolve())
	return wire.OK(map[string][]aztype.Constraint{"constraints": constraints})
}
