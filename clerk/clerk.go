// Package clerk implements the Gateway (C8, §4.8): the stateless
// request dispatcher that decodes a wire.Request, validates it,
// invokes one or more of the Template Registry / Object Store /
// Constraint Registry / Command Queue, and encodes a wire.Reply.
//
// The Gateway is the only component that enforces the public request
// schema; every downstream call below assumes validated input.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package clerk

import (
	"github.com/pkg/errors"

	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/mono"
	"github.com/azraelhq/azrael/cmn/nlog"
	"github.com/azraelhq/azrael/igor"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/registry"
	"github.com/azraelhq/azrael/wire"
	"github.com/azraelhq/azrael/xmetrics"
)

// Gateway wires C3-C7 behind the single request/reply entrypoint §6
// describes. sem bounds how many requests Handle services at once,
// regardless of how many connections the transport layer accepts.
type Gateway struct {
	reg  *registry.Registry
	objs *objstore.Store
	igor *igor.Registry
	cmdq *cmdqueue.Queue
	sem  chan struct{}
}

func New(reg *registry.Registry, objs *objstore.Store, ig *igor.Registry, cmdq *cmdqueue.Queue) *Gateway {
	return &Gateway{
		reg: reg, objs: objs, igor: ig, cmdq: cmdq,
		sem: make(chan struct{}, cmn.Rom.GatewayWorkers()),
	}
}

// Handle decodes, dispatches, and encodes exactly one request (§6):
// malformed JSON, missing cmd/data, an unknown cmd, or a handler
// panic/error all surface as ok=false with a human-readable msg.
func (g *Gateway) Handle(raw []byte) []byte {
	g.sem <- struct{}{}
	defer func() { <-g.sem }()

	start := mono.NanoTime()

	req, err := wire.DecodeRequest(raw)
	if err != nil {
		reply := wire.Err("malformed request: %v", err)
		xmetrics.RequestsTotal.WithLabelValues("_decode", "error").Inc()
		b, _ := reply.Encode()
		return b
	}

	reply := g.dispatch(req)

	outcome := "ok"
	if !reply.OK {
		outcome = "error"
	}
	xmetrics.RequestsTotal.WithLabelValues(req.Cmd, outcome).Inc()
	xmetrics.RequestDuration.WithLabelValues(req.Cmd).Observe(mono.Since(start).Seconds())

	b, err := reply.Encode()
	if err != nil {
		nlog.Errorf("clerk: encode reply for %q: %v", req.Cmd, err)
		fallback, _ := wire.Err("internal: failed to encode reply").Encode()
		return fallback
	}
	return b
}

func (g *Gateway) dispatch(req wire.Request) (reply wire.Reply) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic in handler for %q: %v", req.Cmd, r)
			nlog.Errorf("clerk: %+v", err)
			reply = wire.Err("internal error handling %q", req.Cmd)
		}
	}()

	switch req.Cmd {
	case wire.CmdPing:
		return g.handlePing()
	case wire.CmdAddTemplates:
		return g.handleAddTemplates(req.Data)
	case wire.CmdGetTemplates:
		return g.handleGetTemplates(req.Data)
	case wire.CmdGetTemplateID:
		return g.handleGetTemplateID(req.Data)
	case wire.CmdSpawn:
		return g.handleSpawn(req.Data)
	case wire.CmdRemoveObject:
		return g.handleRemoveObject(req.Data)
	case wire.CmdRemoveObjects:
		return g.handleRemoveObjects(req.Data)
	case wire.CmdGetAllObjIDs:
		return g.handleGetAllObjIDs()
	case wire.CmdGetObjectStates:
		return g.handleGetObjectStates(req.Data)
	case wire.CmdGetRigidBodies:
		return g.handleGetRigidBodies(req.Data)
	case wire.CmdSetRigidBodies:
		return g.handleSetRigidBodies(req.Data)
	case wire.CmdGetFragments:
		return g.handleGetFragments(req.Data)
	case wire.CmdSetFragments:
		return g.handleSetFragments(req.Data)
	case wire.CmdSetForce:
		return g.handleSetForce(req.Data)
	case wire.CmdControlParts:
		return g.handleControlParts(req.Data)
	case wire.CmdAddConstraints:
		return g.handleAddConstraints(req.Data)
	case wire.CmdGetConstraints:
		return g.handleGetConstraints(req.Data)
	case wire.CmdDeleteConstraints:
		return g.handleDeleteConstraints(req.Data)
	case wire.CmdSetCustom:
		return g.handleSetCustom(req.Data)
	case wire.CmdGetCustom:
		return g.handleGetCustom(req.Data)
	default:
		return wire.Err("unknown cmd %q", req.Cmd)
	}
}

func (g *Gateway) handlePing() wire.Reply {
	return wire.OK(map[string]string{"pong": "clerk"})
}

// idList is the shared "specific IDs, or every one" request shape used
// by most of C4/C5's read operations (§4.4, §4.5: "list<ObjID>|all").
type idList struct {
	ObjIDs []string `json:"obj_ids"`
	All    bool     `json:"all"`
}

func (l idList) resolve() []string {
	if l.All {
		return nil
	}
	return l.ObjIDs
}
