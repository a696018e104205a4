// Package mono provides a monotonic clock source for components (the
// command queue, the physics worker tick loop, the logger's rotation
// timer) that must measure elapsed time without being perturbed by
// wall-clock adjustments.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// start anchors NanoTime; time.Since reads Go's monotonic clock
// reading carried by start.
var start = time.Now()

// NanoTime returns a monotonic timestamp in nanoseconds. Only the
// difference between two calls is meaningful.
func NanoTime() int64 { return int64(time.Since(start)) }

// Since returns the elapsed duration since a NanoTime() reading.
func Since(t int64) time.Duration { return time.Duration(NanoTime() - t) }
