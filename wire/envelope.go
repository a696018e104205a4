// Package wire defines azrael's request/reply envelope and the
// command-name constants the Gateway dispatches on (§6, §4.8).
//
// Adapted from the teacher's api/apc/actmsg.go ActMsg pattern: a
// small, flat control message plus a big const block of action names.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Command names dispatched by the Gateway (§4.8, abridged list).
const (
	CmdPing = "ping"

	CmdAddTemplates  = "add_templates"
	CmdGetTemplates  = "get_templates"
	CmdGetTemplateID = "get_template_id"

	CmdSpawn         = "spawn"
	CmdRemoveObject  = "remove_object"
	CmdRemoveObjects = "remove_objects"
	CmdGetAllObjIDs  = "get_all_objids"

	CmdGetObjectStates = "get_object_states"
	CmdGetRigidBodies  = "get_rigid_bodies"
	CmdSetRigidBodies  = "set_rigid_bodies"

	CmdGetFragments = "get_fragments"
	CmdSetFragments = "set_fragments"

	CmdSetForce     = "set_force"
	CmdControlParts = "control_parts"

	CmdAddConstraints    = "add_constraints"
	CmdGetConstraints    = "get_constraints"
	CmdDeleteConstraints = "delete_constraints"

	CmdSetCustom = "set_custom"
	CmdGetCustom = "get_custom"
)

// Request is the decoded form of a wire request: `{cmd:string, data:object}`.
type Request struct {
	Cmd  string              `json:"cmd"`
	Data jsoniter.RawMessage `json:"data"`
}

// Reply is the wire envelope every handler produces: `{ok, msg, data}`.
type Reply struct {
	OK   bool   `json:"ok"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func OK(data any) Reply { return Reply{OK: true, Data: data} }

func Err(format string, a ...any) Reply {
	return Reply{OK: false, Msg: fmt.Sprintf(format, a...)}
}

// DecodeRequest parses a raw wire request.
func DecodeRequest(b []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(b, &req)
	return req, err
}

// DecodeInto unmarshals a request's data payload into v; an empty
// payload is treated as "no fields set", not an error, since several
// commands (ping, get_all_objids) carry no data at all.
func DecodeInto(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Encode renders a reply to wire bytes.
func (r Reply) Encode() ([]byte, error) { return json.Marshal(r) }

func (r Request) String() string {
	s := "req[" + r.Cmd
	if len(r.Data) > 0 {
		s += ", data=" + string(r.Data)
	}
	return s + "]"
}
