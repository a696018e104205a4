// AID: azrael identifier (§3, glossary).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// AID is a validated identifier string used for template names,
// fragment names, and booster/factory part names: 1..32 characters
// from [a-zA-Z0-9_].
type AID string

func NewAID(s string) (AID, error) {
	if !cos.IsValidAID(s) {
		return "", cos.NewErrValidation("invalid AID %q: must be 1-32 chars of [a-zA-Z0-9_]", s)
	}
	return AID(s), nil
}

func (a AID) String() string { return string(a) }
