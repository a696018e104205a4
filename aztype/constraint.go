// Constraint (§3), managed by the Constraint Registry (igor, §4.5).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// ConType tags the Constraint condata variant.
type ConType string

const (
	ConP2P            ConType = "P2P"
	ConSixDofSpring2  ConType = "SixDofSpring2"
)

// ConP2PData is the P2P constraint payload (§3).
type ConP2PData struct {
	PivotA Vec3 `json:"pivot_a"`
	PivotB Vec3 `json:"pivot_b"`
}

// ConSixDofSpring2Data is the 6-DoF spring constraint payload (§3).
type ConSixDofSpring2Data struct {
	FrameInA     Vec7    `json:"frame_in_a"`
	FrameInB     Vec7    `json:"frame_in_b"`
	Stiffness    Vec6    `json:"stiffness"`
	Damping      Vec6    `json:"damping"`
	Equilibrium  Vec6    `json:"equilibrium"`
	LinLo        Vec3    `json:"lin_lo"`
	LinHi        Vec3    `json:"lin_hi"`
	RotLo        Vec3    `json:"rot_lo"`
	RotHi        Vec3    `json:"rot_hi"`
	Bounce       Vec3    `json:"bounce"`
	EnableSpring [6]bool `json:"enable_spring"`
}

// Constraint wraps a tagged condata variant with its identity fields
// (§3). RBB may be empty for a constraint anchored to the world.
type Constraint struct {
	AID  AID     `json:"aid"`
	Type ConType `json:"contype"`
	RBA  string  `json:"rb_a"`
	RBB  string  `json:"rb_b"`

	P2P           *ConP2PData           `json:"p2p,omitempty"`
	SixDofSpring2 *ConSixDofSpring2Data `json:"six_dof_spring2,omitempty"`
}

func NewP2PConstraint(aid AID, rbA, rbB string, data ConP2PData) (Constraint, error) {
	if !cos.IsValidAID(string(aid)) {
		return Constraint{}, cos.NewErrValidation("invalid constraint AID %q", aid)
	}
	if rbA == "" {
		return Constraint{}, cos.NewErrValidation("constraint rb_a must not be empty")
	}
	return Constraint{AID: aid, Type: ConP2P, RBA: rbA, RBB: rbB, P2P: &data}, nil
}

func NewSixDofSpring2Constraint(aid AID, rbA, rbB string, data ConSixDofSpring2Data) (Constraint, error) {
	if !cos.IsValidAID(string(aid)) {
		return Constraint{}, cos.NewErrValidation("invalid constraint AID %q", aid)
	}
	if rbA == "" {
		return Constraint{}, cos.NewErrValidation("constraint rb_a must not be empty")
	}
	return Constraint{AID: aid, Type: ConSixDofSpring2, RBA: rbA, RBB: rbB, SixDofSpring2: &data}, nil
}

// IdentityKey returns (contype, normalised(rb_a,rb_b), aid) per §3:
// "Identity of a constraint in the registry is (contype,
// normalised(rb_a,rb_b), aid)". rb_a/rb_b are sorted lexicographically
// so (A,B) and (B,A) refer to the same constraint.
func (c Constraint) IdentityKey() (contype ConType, rbA, rbB string, aid AID) {
	a, b := c.RBA, c.RBB
	if b != "" && a > b {
		a, b = b, a
	}
	return c.Type, a, b, c.AID
}

// Normalised returns a copy of c with rb_a/rb_b sorted, matching what
// IdentityKey computes; used when persisting so the stored record is
// self-consistent with its own key.
func (c Constraint) Normalised() Constraint {
	_, a, b, _ := c.IdentityKey()
	c.RBA, c.RBB = a, b
	return c
}

// Bodies returns the (possibly one, if rb_b is empty) body IDs this
// constraint references, used by getConstraints/uniquePairs.
func (c Constraint) Bodies() []string {
	if c.RBB == "" {
		return []string{c.RBA}
	}
	return []string{c.RBA, c.RBB}
}
