package server

import (
	"context"
	"net/http"
	"time"

	"parking-facility/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(port string, handler *Handler) *Server {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(TracingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/facility", func(r chi.Router) {
		r.Post("/check-in", handler.CheckIn)
		r.Post("/check-out", handler.CheckOut)
		r.Get("/status", handler.GetStatus)
		r.Post("/slots", handler.AddSlot)
		r.Post("/slots/{id}/force-release", handler.ForceRelease)
		r.Get("/reports/revenue", handler.RevenueReport)
		r.Get("/reports/traffic", handler.TrafficReport)
		r.Get("/reports/durations", handler.DurationsReport)
		r.Get("/transactions", handler.ListTransactions)
		r.Patch("/transactions/{id}", handler.EditTransaction)
		r.Delete("/transactions/{id}", handler.DeleteTransaction)
		r.Get("/export.csv", handler.ExportCSV)
		r.Get("/insights", handler.Insights)
	})

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
