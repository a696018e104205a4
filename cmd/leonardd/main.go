// Command leonardd runs the reference Physics Worker (C9): it opens
// the same buntdb store as clerkd, drains the Command Queue on a fixed
// tick, and writes simulated body state back into the Object Store.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/cmn/nlog"
	"github.com/azraelhq/azrael/idalloc"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/leonard"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/registry"
)

func main() {
	storePath := flag.String("store", ":memory:", "buntdb store path, shared with clerkd")
	logDir := flag.String("log_dir", "/tmp/azrael/log", "log directory")
	tickInterval := flag.Duration("tick_interval", 33*time.Millisecond, "physics tick interval")
	drainTimeout := flag.Duration("drain_timeout", time.Second, "bound on the final drain tick at shutdown")
	nlog.InitFlags(flag.CommandLine)
	flag.Parse()

	nlog.SetLogDirRole(*logDir, "leonard")
	nlog.SetTitle("azrael leonardd")

	var cfg cmn.Config
	cfg.Store.Path = *storePath
	cfg.Worker.TickInterval = *tickInterval
	cfg.Timeout.DrainTimeout = *drainTimeout
	cmn.Rom.Set(&cfg)

	store, err := kvs.Open(*storePath)
	if err != nil {
		cos.ExitLogf("open store %q: %v", *storePath, err)
	}
	defer store.Close()

	assetStore := assets.NewLocal()
	reg := registry.New(store, assetStore)
	alloc, err := idalloc.New(store)
	if err != nil {
		cos.ExitLogf("init id allocator: %v", err)
	}
	queue := cmdqueue.New(store)
	objs := objstore.New(store, reg, assetStore, alloc, queue)

	worker := leonard.New(objs, queue, cmn.Rom.TickInterval())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	nlog.Infof("physics worker ticking every %s", cmn.Rom.TickInterval())
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		cos.ExitLogf("worker run: %v", err)
	}
	nlog.Flush(true)
}
