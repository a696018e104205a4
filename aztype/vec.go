// Package aztype holds azrael's typed data model (§3 of the design):
// vectors, collision shapes, rigid bodies, fragments, boosters,
// factories, templates, constraints, and queued commands, each
// produced through a validating builder per §4.1.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "math"

// Vec3 is a 3-tuple of float64, used for positions, linear/angular
// velocity, axis locks, and collision-shape extents.
type Vec3 [3]float64

// Vec4 is a general-purpose 4-tuple of float64.
type Vec4 [4]float64

// Vec6 is a 6-tuple, one value per linear/angular axis (stiffness,
// damping, equilibrium in SixDofSpring2).
type Vec6 [6]float64

// Vec7 is a frame: 3 position components + 4 quaternion components.
type Vec7 [7]float64

// Quat is a rotation, stored (x, y, z, w) per §3.
type Quat [4]float64

// IdentityQuat is the default (no) rotation.
var IdentityQuat = Quat{0, 0, 0, 1}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}
func (v Vec3) Dot(o Vec3) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) IsZero() bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

// Normalize returns v / |v| and ok=false if |v| is too small to
// normalise reliably (the minimum-norm threshold used for booster and
// factory directions, §4.1: "reject if ‖d‖<1e-5").
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Length()
	if l < minDirectionNorm {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

const minDirectionNorm = 1e-5

// Rotate applies quaternion q to vector v (q * v * q^-1), used
// throughout (AABB centres, world-frame factory ejection, booster
// torque) to move a local-frame vector into world space.
func (q Quat) Rotate(v Vec3) Vec3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	// t = 2 * cross(qxyz, v)
	qxyz := Vec3{x, y, z}
	t := qxyz.Cross(v).Scale(2)
	// v' = v + w*t + cross(qxyz, t)
	return v.Add(t.Scale(w)).Add(qxyz.Cross(t))
}

// IsIdentity reports whether q is the default (no) rotation.
func (q Quat) IsIdentity() bool { return q == IdentityQuat }

// IsDefaultPose reports the default (uninitialised) position/rotation pose:
// zero position and identity rotation, required of the sole shape in
// a body that carries a Plane (§3).
func IsDefaultPose(pos Vec3, rot Quat) bool {
	return pos.IsZero() && rot.IsIdentity()
}
