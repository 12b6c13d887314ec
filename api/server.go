package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
)

var log = logger.GetOrCreate("api")

// Server - the HTTP listener serving the API and the page
type Server struct {
	ctx             context.Context
	cancelCtx       func()
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
	started         bool
}

// NewServer - binds the configured listen address and prepares the server. Requests are
// served once Start is called
func NewServer(ctx context.Context, cfg *data.AppConfig, handler http.Handler) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("nil app config")
	}

	requestTimeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "request timeout")
	}
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "shutdown timeout")
	}

	s := &Server{
		httpServerDone:  make(chan error, 1),
		requestTimeout:  requestTimeout,
		shutdownTimeout: shutdownTimeout,
	}

	s.listener, err = net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "can not listen on %s", cfg.ListenAddress)
	}
	log.Info("server listening", "address", s.listener.Addr().String())

	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	handler = s.withLogAndTimeout(handler)
	handler = WrapCorsIfEnabled(handler, cfg.CorsOrigins)

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: requestTimeout,
		WriteTimeout:      requestTimeout + time.Second,
	}

	return s, nil
}

// Addr - returns the address the server listens on
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start - serves requests in the background
func (s *Server) Start() {
	s.started = true
	go func() {
		s.httpServerDone <- s.httpServer.Serve(s.listener)
	}()
}

// Stop - waits for the in-flight requests up to the shutdown timeout, then closes the server
func (s *Server) Stop() {
	if !s.started {
		return
	}

	log.Info("server shutting down")
	shutdownStarted := time.Now()
	gracefulShutdown := make(chan struct{})
	go func() {
		defer close(gracefulShutdown)
		_ = s.httpServer.Shutdown(s.ctx)
	}()

	select {
	case <-time.After(s.shutdownTimeout):
		log.Warn("server terminating", "waited", time.Since(shutdownStarted).String())
		_ = s.httpServer.Close()
	case <-gracefulShutdown:
	}

	s.cancelCtx()
	err := <-s.httpServerDone
	log.Info("server ended", "error", err)
	s.started = false
}

// calcRequestTimeout honours a Request-Timeout header (seconds or a duration) as long as
// it is shorter than the configured timeout
func (s *Server) calcRequestTimeout(req *http.Request) time.Duration {
	header := req.Header.Get("Request-Timeout")
	if header == "" {
		return s.requestTimeout
	}

	var custom time.Duration
	secs, err := strconv.ParseInt(header, 10, 32)
	if err == nil {
		custom = time.Duration(secs) * time.Second
	} else {
		custom, err = time.ParseDuration(header)
	}
	if err != nil || custom <= 0 {
		log.Warn("invalid Request-Timeout header", "value", header)
		return s.requestTimeout
	}
	if custom > s.requestTimeout {
		return s.requestTimeout
	}

	return custom
}

type logCapture struct {
	status int
	res    http.ResponseWriter
}

func (lc *logCapture) Header() http.Header {
	return lc.res.Header()
}

func (lc *logCapture) Write(b []byte) (int, error) {
	return lc.res.Write(b)
}

func (lc *logCapture) WriteHeader(statusCode int) {
	lc.status = statusCode
	lc.res.WriteHeader(statusCode)
}

func (s *Server) withLogAndTimeout(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(req.Context(), s.calcRequestTimeout(req))
		defer cancel()
		req = req.WithContext(ctx)

		log.Debug("-->", "method", req.Method, "path", req.URL.Path)

		lc := &logCapture{res: res, status: http.StatusOK}
		handler.ServeHTTP(lc, req)

		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		log.Debug("<--", "method", req.Method, "path", req.URL.Path, "status", lc.status, "ms", strconv.FormatFloat(durationMS, 'f', 2, 64))
	})
}
