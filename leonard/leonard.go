// Package leonard implements a reference Physics Worker (C9, §4.9):
// the external collaborator that drains the Command Queue each tick,
// applies spawns/removals/modifies/forces to its own in-memory world,
// steps a minimal forward-Euler integrator, and writes the result back
// to the Object Store - update-only, never upsert (§9 open question).
//
// The kinematic integrator itself (collision response, constraint
// solving) is explicitly out of scope (Non-goals); this package exists
// to exercise the Command Queue / Object Store contract end-to-end
// with a physically plausible stand-in.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package leonard

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/mono"
	"github.com/azraelhq/azrael/cmn/nlog"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/xmetrics"
)

// body is one simulated object's live state, kept in the worker's own
// world rather than re-read from the store every tick.
type body struct {
	rb          aztype.RigidBody
	forceAccum  aztype.Vec3
	torqueAccum aztype.Vec3
}

// Worker is the reference Physics Worker.
type Worker struct {
	objs  *objstore.Store
	queue *cmdqueue.Queue
	dt    time.Duration

	mu    sync.Mutex
	world map[string]*body
}

func New(objs *objstore.Store, queue *cmdqueue.Queue, tickInterval time.Duration) *Worker {
	return &Worker{
		objs:  objs,
		queue: queue,
		dt:    tickInterval,
		world: map[string]*body{},
	}
}

// Run drives Tick on the configured interval until ctx is cancelled,
// then performs one final drain-and-writeback tick so that commands
// queued just before shutdown are not silently lost, bounded by
// cmn.Rom.DrainTimeout.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			done := make(chan struct{})
			go func() {
				defer close(done)
				if err := w.Tick(); err != nil {
					nlog.Errorf("leonard: final drain tick: %v", err)
				}
			}()
			select {
			case <-done:
			case <-time.After(cmn.Rom.DrainTimeout()):
				nlog.Warningf("leonard: final drain tick exceeded %s", cmn.Rom.DrainTimeout())
			}
			return ctx.Err()
		case <-ticker.C:
			if err := w.Tick(); err != nil {
				nlog.Errorf("leonard: tick: %v", err)
			}
		}
	}
}

// Tick drains the queue once, applies every command to the world,
// steps the integrator, and writes every touched body back (§4.9).
func (w *Worker) Tick() error {
	start := mono.NanoTime()

	drained, err := w.queue.DequeueCommands()
	if err != nil {
		return err
	}
	xmetrics.QueueDepth.Set(float64(len(drained.Spawn) + len(drained.Remove) + len(drained.Modify) +
		len(drained.DirectForce) + len(drained.BoosterForce)))

	w.mu.Lock()
	defer w.mu.Unlock()

	touched := map[string]bool{}

	for _, c := range drained.Spawn {
		w.world[c.ObjID] = &body{rb: c.RB}
		touched[c.ObjID] = true
	}
	for _, c := range drained.Remove {
		delete(w.world, c.ObjID)
		delete(touched, c.ObjID)
	}
	for _, c := range drained.Modify {
		b, ok := w.world[c.ObjID]
		if !ok {
			continue
		}
		patch := c.Patch
		patch.Apply(&b.rb)
		touched[c.ObjID] = true
	}
	for _, c := range drained.DirectForce {
		b, ok := w.world[c.ObjID]
		if !ok {
			continue
		}
		// direct_force is already expressed in world frame (§4.8/§4.9).
		b.forceAccum = b.forceAccum.Add(c.Force)
		b.torqueAccum = b.torqueAccum.Add(c.Torque)
		touched[c.ObjID] = true
	}
	for _, c := range drained.BoosterForce {
		b, ok := w.world[c.ObjID]
		if !ok {
			continue
		}
		// booster_force is local-frame: rotate by the body's current
		// orientation before accumulating (§4.8/§4.9).
		b.forceAccum = b.forceAccum.Add(b.rb.Rotation.Rotate(c.Force))
		b.torqueAccum = b.torqueAccum.Add(b.rb.Rotation.Rotate(c.Torque))
		touched[c.ObjID] = true
	}

	dt := w.dt.Seconds()
	for objID, b := range w.world {
		if !b.forceAccum.IsZero() || !b.torqueAccum.IsZero() {
			touched[objID] = true
		}
		w.step(b, dt)
	}

	for objID := range touched {
		b, ok := w.world[objID]
		if !ok {
			continue // removed this same tick
		}
		if _, err := w.objs.Writeback(objID, b.rb); err != nil {
			nlog.Errorf("leonard: writeback %s: %v", objID, err)
		}
	}

	xmetrics.TickDuration.Observe(mono.Since(start).Seconds())
	return nil
}

// step applies one forward-Euler integration step: accumulated
// force/torque become a velocity change (scaled by imass), velocity
// integrates position and rotation, and the per-tick accumulators
// reset. Bodies with axis locks do not move along locked axes.
func (w *Worker) step(b *body, dt float64) {
	if b.rb.IMass > 0 {
		dv := b.forceAccum.Scale(b.rb.IMass * dt)
		dw := b.torqueAccum.Scale(b.rb.IMass * dt)
		b.rb.VelocityLin = b.rb.VelocityLin.Add(dv)
		b.rb.VelocityRot = b.rb.VelocityRot.Add(dw)
	}
	b.forceAccum = aztype.Vec3{}
	b.torqueAccum = aztype.Vec3{}

	lockedVel := aztype.Vec3{
		b.rb.VelocityLin[0] * b.rb.AxesLockLin[0],
		b.rb.VelocityLin[1] * b.rb.AxesLockLin[1],
		b.rb.VelocityLin[2] * b.rb.AxesLockLin[2],
	}
	b.rb.Position = b.rb.Position.Add(lockedVel.Scale(dt))

	angVel := aztype.Vec3{
		b.rb.VelocityRot[0] * b.rb.AxesLockRot[0],
		b.rb.VelocityRot[1] * b.rb.AxesLockRot[1],
		b.rb.VelocityRot[2] * b.rb.AxesLockRot[2],
	}
	b.rb.Rotation = integrateRotation(b.rb.Rotation, angVel, dt)
}

// integrateRotation advances q by angular velocity w over dt using the
// standard small-angle quaternion derivative q' = q + 0.5*dt*(w,0)*q,
// renormalised to counter drift.
func integrateRotation(q aztype.Quat, w aztype.Vec3, dt float64) aztype.Quat {
	if w.IsZero() {
		return q
	}
	x, y, z, ww := q[0], q[1], q[2], q[3]
	wx, wy, wz := w[0], w[1], w[2]

	dx := 0.5 * dt * (ww*wx + y*wz - z*wy)
	dy := 0.5 * dt * (ww*wy + z*wx - x*wz)
	dz := 0.5 * dt * (ww*wz + x*wy - y*wx)
	dw := 0.5 * dt * (-x*wx - y*wy - z*wz)

	nq := aztype.Quat{x + dx, y + dy, z + dz, ww + dw}
	norm := nq[0]*nq[0] + nq[1]*nq[1] + nq[2]*nq[2] + nq[3]*nq[3]
	if norm <= 0 {
		return q
	}
	inv := 1 / math.Sqrt(norm)
	return aztype.Quat{nq[0] * inv, nq[1] * inv, nq[2] * inv, nq[3] * inv}
}
