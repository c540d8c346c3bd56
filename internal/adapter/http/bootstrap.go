package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	database "newsletter/internal/adapter/database/postgres"
	"newsletter/internal/adapter/http/middleware"
	"newsletter/internal/adapter/http/routes"
	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

var (
	ErrNilListener    = errors.New("server requires a bound listener")
	ErrNilPool        = errors.New("server requires a connected pool")
	ErrListenerClosed = errors.New("server listener is closed")
)

type options struct {
	serviceName    string
	metrics        *telemetry.AppMetrics
	readTimeout    time.Duration
	writeTimeout   time.Duration
	requestTimeout time.Duration
}

type Option func(*options)

func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// WithMetrics records request and subscription metrics into m.
func WithMetrics(m *telemetry.AppMetrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTimeouts(read, write time.Duration) Option {
	return func(o *options) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

// WithRequestTimeout cancels each request context after d.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// Server serves the application routes on a listener it did not bind.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   *logger.Logger
}

// NewServer wires listener and db to the route table. It does not start
// serving; call Run.
func NewServer(listener net.Listener, db *database.DB, log *logger.Logger, opts ...Option) (*Server, error) {
	if listener == nil {
		return nil, ErrNilListener
	}

	if err := checkListener(listener); err != nil {
		return nil, err
	}

	if db == nil || db.Pool == nil {
		return nil, ErrNilPool
	}

	if log == nil {
		log = logger.Nop()
	}

	o := options{
		serviceName:  "newsletter",
		readTimeout:  15 * time.Second,
		writeTimeout: 15 * time.Second,
	}

	for _, opt := range opts {
		opt(&o)
	}

	container := NewContainer(db, log, o.metrics)

	middlewares := []gin.HandlerFunc{
		gin.Recovery(),
		otelgin.Middleware(o.serviceName),
		middleware.RequestID(),
		middleware.Logging(log),
	}

	if o.metrics != nil {
		middlewares = append(middlewares, middleware.Metrics(o.metrics))
	}

	if o.requestTimeout > 0 {
		middlewares = append(middlewares, middleware.Timeout(o.requestTimeout))
	}

	router := routes.SetupRouter(routes.Table(routes.HandlersConfig{
		HealthHandler:       container.HealthHandler,
		SubscriptionHandler: container.SubscriptionHandler,
	}), middlewares...)

	return &Server{
		srv: &http.Server{
			Handler:      router,
			ReadTimeout:  o.readTimeout,
			WriteTimeout: o.writeTimeout,
		},
		listener: listener,
		logger:   log,
	}, nil
}

// checkListener reaches the listener's file descriptor without accepting, so
// a closed socket is reported before Run. Listeners without a descriptor are
// accepted as-is.
func checkListener(listener net.Listener) error {
	sc, ok := listener.(syscall.Conn)

	if !ok {
		return nil
	}

	rc, err := sc.SyscallConn()

	if err != nil {
		return fmt.Errorf("%w: %w", ErrListenerClosed, err)
	}

	if err := rc.Control(func(uintptr) {}); err != nil {
		return fmt.Errorf("%w: %w", ErrListenerClosed, err)
	}

	return nil
}

// Addr reports the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Run serves until Shutdown is called or the listener fails. It returns nil
// after a graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info("Server starting", zap.String("addr", s.Addr()))

	if err := s.srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server failed", zap.Error(err))
		return err
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
