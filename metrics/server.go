package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Status is the minimal worker snapshot served at /status.
type Status struct {
	Worker   int
	HasWork  bool
	Pending  int // pending activations at last sample
	Scope    uint64
}

// StatusFunc is called on every /status request to get a fresh snapshot,
// so the server never holds a stale copy.
type StatusFunc func() Status

// Server is the worker's optional debug HTTP endpoint (SPEC_FULL.md §4
// Domain Stack: `/metrics` Prometheus exposition plus `/status`), built
// on `valyala/fasthttp` the way the teacher's own debug/proxy servers
// are, rather than `net/http`.
type Server struct {
	reg    *Registry
	status StatusFunc
	server *fasthttp.Server
}

// NewServer wraps reg's gatherer and status in a fasthttp request
// handler. Call ListenAndServe to start serving.
func NewServer(reg *Registry, status StatusFunc) *Server {
	s := &Server{reg: reg, status: status}
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}),
	)
	s.server = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			switch string(ctx.Path()) {
			case "/metrics":
				metricsHandler(ctx)
			case "/status":
				s.serveStatus(ctx)
			default:
				ctx.SetStatusCode(fasthttp.StatusNotFound)
			}
		},
	}
	return s
}

func (s *Server) serveStatus(ctx *fasthttp.RequestCtx) {
	st := s.status()
	ctx.SetContentType("text/plain; charset=utf-8")
	fmt.Fprintf(ctx, "worker=%d has_work=%t pending=%d scope=%d\n", st.Worker, st.HasWork, st.Pending, st.Scope)
}

// ListenAndServe starts serving on addr, blocking until it returns an
// error (mirrors fasthttp.Server.ListenAndServe; the caller typically
// runs this in its own errgroup-supervised goroutine).
func (s *Server) ListenAndServe(addr string) error {
	return s.server.ListenAndServe(addr)
}

// Shutdown stops the server, letting in-flight requests finish.
func (s *Server) Shutdown() error { return s.server.Shutdown() }
