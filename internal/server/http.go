package server

import (
	"context"
	"net/http"
	"time"
)

type HTTP struct {
	addr   string
	engine http.Handler
	srv    *http.Server
}

func NewHTTP(addr string, h http.Handler) *HTTP {
	return &HTTP{addr: addr, engine: h}
}

func (h *HTTP) Addr() string { return h.addr }

// Start blocks until the server stops. It returns nil after Stop.
func (h *HTTP) Start() error {
	h.srv = &http.Server{Addr: h.addr, Handler: h.engine, ReadHeaderTimeout: 10 * time.Second}
	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (h *HTTP) Stop(ctx context.Context) error {
	if h.srv == nil {
		return nil
	}
	return h.srv.Shutdown(ctx)
}
