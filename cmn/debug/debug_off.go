//go:build !debug

// Package debug provides invariant assertions that are free of cost in
// production builds and active only when built with the "debug" tag.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package debug

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func AssertNoErr(_ error)                {}
func Assertf(_ bool, _ string, _ ...any) {}
