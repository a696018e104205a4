// Package cmdqueue implements the Command Queue (C6, §4.6): an
// append-only, upsert-by-(cmd-type,objID) store the Gateway and Object
// Store write into and the Physics Worker atomically drains.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cmdqueue

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/kvs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "cmd:"

// Queue is the Command Queue. Every Add* call is an upsert keyed by
// (kind, objID): a later call for the same pair, before the queue is
// next drained, silently overwrites the earlier one. This is
// intentionally lossy for direct_force and booster_force - only the
// most recent force/torque submitted within a tick survives to the
// Physics Worker.
type Queue struct {
	store *kvs.Store
}

func New(store *kvs.Store) *Queue { return &Queue{store: store} }

// key derives the upsert-by-(cmd-type,objID) key: objID is folded
// through cos.HashString/HashKey into a compact digest, matching the
// identity-key pattern the constraint registry (igor) uses.
func key(kind aztype.CmdKind, objID string) string {
	return keyPrefix + string(kind) + ":" + cos.HashKey(cos.HashString(objID))
}

func (q *Queue) put(kind aztype.CmdKind, objID string, cmd aztype.QueuedCommand) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return q.store.Set(key(kind, objID), string(b))
}

func (q *Queue) AddSpawn(data aztype.CmdSpawnData) error {
	return q.put(aztype.CmdSpawn, data.ObjID, aztype.QueuedCommand{Kind: aztype.CmdSpawn, Spawn: &data})
}

func (q *Queue) AddRemove(objID string) error {
	data := aztype.CmdRemoveData{ObjID: objID}
	return q.put(aztype.CmdRemove, objID, aztype.QueuedCommand{Kind: aztype.CmdRemove, Remove: &data})
}

func (q *Queue) AddModify(data aztype.CmdModifyData) error {
	return q.put(aztype.CmdModify, data.ObjID, aztype.QueuedCommand{Kind: aztype.CmdModify, Modify: &data})
}

func (q *Queue) AddDirectForce(data aztype.CmdForceData) error {
	return q.put(aztype.CmdDirectForce, data.ObjID, aztype.QueuedCommand{Kind: aztype.CmdDirectForce, DirectForce: &data})
}

func (q *Queue) AddBoosterForce(data aztype.CmdForceData) error {
	return q.put(aztype.CmdBoosterForce, data.ObjID, aztype.QueuedCommand{Kind: aztype.CmdBoosterForce, BoosterForce: &data})
}

// DequeueCommands atomically reads and removes every queued command,
// partitioned by kind (§4.6).
func (q *Queue) DequeueCommands() (aztype.DrainedCommands, error) {
	var out aztype.DrainedCommands
	var unmarshalErr error

	_, err := q.store.DeletePrefixCollecting(keyPrefix, func(_, val string) {
		if unmarshalErr != nil {
			return
		}
		var cmd aztype.QueuedCommand
		if err := json.Unmarshal([]byte(val), &cmd); err != nil {
			unmarshalErr = err
			return
		}
		switch cmd.Kind {
		case aztype.CmdSpawn:
			out.Spawn = append(out.Spawn, *cmd.Spawn)
		case aztype.CmdRemove:
			out.Remove = append(out.Remove, *cmd.Remove)
		case aztype.CmdModify:
			out.Modify = append(out.Modify, *cmd.Modify)
		case aztype.CmdDirectForce:
			out.DirectForce = append(out.DirectForce, *cmd.DirectForce)
		case aztype.CmdBoosterForce:
			out.BoosterForce = append(out.BoosterForce, *cmd.BoosterForce)
		}
	})
	if unmarshalErr != nil {
		return aztype.DrainedCommands{}, unmarshalErr
	}
	if err != nil {
		return aztype.DrainedCommands{}, err
	}
	return out, nil
}
