// Command clerkd runs the Gateway (C8): the request/reply socket, the
// websocket bridge, and the asset HTTP service, all backed by one
// buntdb store shared with the Template Registry, Object Store, and
// Constraint Registry.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"flag"
	"time"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/clerk"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/cmn/nlog"
	"github.com/azraelhq/azrael/idalloc"
	"github.com/azraelhq/azrael/igor"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/registry"
	"github.com/azraelhq/azrael/transport"
)

func main() {
	storePath := flag.String("store", ":memory:", "buntdb store path, or :memory:")
	reqrepAddr := flag.String("reqrep_addr", ":8700", "request/reply socket listen address")
	wsAddr := flag.String("ws_addr", ":8701", "websocket bridge listen address")
	assetAddr := flag.String("asset_addr", ":8702", "asset HTTP service listen address")
	logDir := flag.String("log_dir", "/tmp/azrael/log", "log directory")
	workers := flag.Int("gateway_workers", 16, "max requests the Gateway services concurrently")
	reqTimeout := flag.Duration("request_timeout", 5*time.Second, "read timeout for request/reply and websocket connections")
	nlog.InitFlags(flag.CommandLine)
	flag.Parse()

	nlog.SetLogDirRole(*logDir, "clerk")
	nlog.SetTitle("azrael clerkd")

	var cfg cmn.Config
	cfg.Store.Path = *storePath
	cfg.Gateway.ReqRepAddr = *reqrepAddr
	cfg.Gateway.WSAddr = *wsAddr
	cfg.Gateway.AssetAddr = *assetAddr
	cfg.Gateway.Workers = *workers
	cfg.Timeout.RequestTimeout = *reqTimeout
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
	constraints, err := igor.New(store)
	if err != nil {
		cos.ExitLogf("init constraint registry: %v", err)
	}
	queue := cmdqueue.New(store)
	objs := objstore.New(store, reg, assetStore, alloc, queue)
	gw := clerk.New(reg, objs, constraints, queue)

	assetSvc := assets.NewHTTPService(assetStore)
	go func() {
		nlog.Infof("asset http service listening on %s", *assetAddr)
		if err := assetSvc.ListenAndServe(*assetAddr); err != nil {
			nlog.Errorf("asset http service: %v", err)
		}
	}()

	reqrep := transport.NewReqRepServer(gw, *reqrepAddr)
	go func() {
		nlog.Infof("reqrep socket listening on %s", *reqrepAddr)
		if err := reqrep.ListenAndServe(); err != nil {
			nlog.Errorf("reqrep socket: %v", err)
		}
	}()

	ws := transport.NewWSServer(gw, *wsAddr)
	nlog.Infof("websocket bridge listening on %s", *wsAddr)
	if err := ws.ListenAndServe(); err != nil {
		cos.ExitLogf("websocket bridge: %v", err)
	}
}
