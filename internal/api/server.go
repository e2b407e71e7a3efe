// Package api is the read-only ops listener: health, Prometheus metrics,
// and JSON views over the same store the bot writes.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pandr/coldcallbot/internal/crm"
	"github.com/pandr/coldcallbot/internal/metrics"
)

const version = "1.0.0"

type Server struct {
	store     *crm.Store
	log       *zap.Logger
	webappURL string
	startTime time.Time
}

func NewServer(store *crm.Store, webappURL string, log *zap.Logger) *Server {
	return &Server{
		store:     store,
		log:       log,
		webappURL: webappURL,
		startTime: time.Now(),
	}
}

// Router assembles the mux. The surface is strictly read-only; writes only
// ever happen through the bot.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/inbox", s.handleInbox)
	r.Get("/api/results", s.handleResults)
	r.Get("/api/stats", s.handleStats)
	return r
}

// Serve runs the listener until ctx is cancelled, then drains with a short
// shutdown window.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	s.log.Info("ops listener started", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	if s.webappURL != "" {
		deps["webapp"] = "configured"
	} else {
		deps["webapp"] = "not configured"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		Version:      version,
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

type inboxResponse struct {
	Count    int           `json:"count"`
	Profiles []crm.Profile `json:"profiles"`
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	profiles := s.store.ListInbox()
	if profiles == nil {
		profiles = []crm.Profile{}
	}
	writeJSON(w, http.StatusOK, inboxResponse{Count: len(profiles), Profiles: profiles})
}

type resultsResponse struct {
	Count   int              `json:"count"`
	Results []crm.CallResult `json:"results"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results := s.store.Results()
	if results == nil {
		results = []crm.CallResult{}
	}
	writeJSON(w, http.StatusOK, resultsResponse{Count: len(results), Results: results})
}

type statsResponse struct {
	crm.CallStats
	SentimentScore int `json:"sentimentScore"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats()
	writeJSON(w, http.StatusOK, statsResponse{CallStats: st, SentimentScore: st.SentimentScore()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
