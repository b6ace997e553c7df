package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ap2stellar/gateway/pkg/currency"
	"github.com/ap2stellar/gateway/pkg/logger"
	"github.com/ap2stellar/gateway/pkg/models"
)

// PaymentProcessor runs a payment intent through validation, authentication
// and settlement, returning a confirmation either way.
type PaymentProcessor interface {
	Process(ctx context.Context, pi *models.PaymentIntent) (*models.Confirmation, error)
}

// StatusLookup reconstructs a confirmation for a previously submitted intent.
type StatusLookup interface {
	Resolve(ctx context.Context, intentID string) (*models.Confirmation, error)
}

// Quoter estimates a conversion without settling anything.
type Quoter interface {
	Quote(ctx context.Context, source, destination currency.AssetDescriptor, sourceAmount, destinationAccount string, baseFeeStroops int64) (*models.Quote, error)
}

// Server exposes the payment API over HTTP.
type Server struct {
	payments PaymentProcessor
	status   StatusLookup
	quoter   Quoter
	resolver *currency.Resolver
	baseFee  int64
	log      logger.Logger

	httpServer *http.Server
}

// NewServer wires the payment API routes onto a chi router.
func NewServer(
	port string,
	payments PaymentProcessor,
	status StatusLookup,
	quoter Quoter,
	resolver *currency.Resolver,
	baseFee int64,
	log logger.Logger,
) *Server {
	s := &Server{
		payments: payments,
		status:   status,
		quoter:   quoter,
		resolver: resolver,
		baseFee:  baseFee,
		log:      log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ap2/payment", s.handlePayment)
		r.Get("/ap2/payment/{intentID}", s.handleStatus)
		r.Get("/quote", s.handleQuote)
	})

	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	s.log.InfoWithComponent(logger.API, "payment API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger records every request with its outcome and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.DebugWithComponent(logger.API, "%s %s -> %d (%s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
