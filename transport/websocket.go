// Websocket bridge (§6): identical envelope to the request/reply
// socket, carried one JSON message per frame over fasthttp/websocket -
// the direct ecosystem companion to the teacher's own valyala/fasthttp.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package transport

import (
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"

	"github.com/azraelhq/azrael/clerk"
	"github.com/azraelhq/azrael/cmn"
	"github.com/azraelhq/azrael/cmn/nlog"
)

var upgrader = websocket.FastHTTPUpgrader{}

// WSServer is the websocket bridge.
type WSServer struct {
	gw   *clerk.Gateway
	addr string
}

func NewWSServer(gw *clerk.Gateway, addr string) *WSServer {
	return &WSServer{gw: gw, addr: addr}
}

func (s *WSServer) handler(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			reply := s.gw.Handle(msg)
			if err := conn.WriteMessage(mt, reply); err != nil {
				return
			}
		}
	})
	if err != nil {
		nlog.Warningf("transport: websocket upgrade from %s: %v", ctx.RemoteAddr(), err)
	}
}

// ListenAndServe blocks serving the websocket bridge on s.addr.
func (s *WSServer) ListenAndServe() error {
	srv := &fasthttp.Server{Handler: s.handler, Name: "azrael-gateway-ws", ReadTimeout: cmn.Rom.RequestTimeout()}
	return srv.ListenAndServe(s.addr)
}
