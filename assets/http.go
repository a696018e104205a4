// Asset HTTP service (§6): serves fragment bytes at the opaque URLs
// returned by the Asset Store, scoped under the templates and
// instances path prefixes. A 404 means "absent"; any 2xx body is the
// file's bytes - exactly the contract §6 asks the core's clients to
// rely on. Implemented over valyala/fasthttp, the HTTP library in the
// teacher's own dependency set.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package assets

import (
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/azraelhq/azrael/cmn/nlog"
)

// HTTPService exposes a Store's file bytes over plain HTTP GET.
// Request path: {templatePrefix|instancePrefix}{token}/{fragName}/{filename}.
type HTTPService struct {
	store *Local
}

func NewHTTPService(store *Local) *HTTPService { return &HTTPService{store: store} }

func (h *HTTPService) Handler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Method()) != fasthttp.MethodGet {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}
	path := string(ctx.Path())

	var prefix string
	switch {
	case strings.HasPrefix(path, templatePrefix):
		prefix = templatePrefix
	case strings.HasPrefix(path, instancePrefix):
		prefix = instancePrefix
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}

	rest := path[len(prefix):]
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	token, fragName, filename := parts[0], parts[1], parts[2]

	h.store.mu.RLock()
	files, ok := h.store.byToken[token]
	var data []byte
	if ok {
		data, ok = files[fragName+"/"+filename]
	}
	h.store.mu.RUnlock()

	if !ok {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/octet-stream")
	if _, err := ctx.Write(data); err != nil {
		nlog.Warningf("asset http: write response for %s: %v", path, err)
	}
}

// ListenAndServe starts the asset HTTP service on addr; it blocks
// until the listener errors out (typically on process shutdown).
func (h *HTTPService) ListenAndServe(addr string) error {
	srv := &fasthttp.Server{Handler: h.Handler, Name: "azrael-assets"}
	return srv.ListenAndServe(addr)
}
