package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/pipeline"
	"stock-signal-bot/internal/types"
	"stock-signal-bot/internal/watchlist"
)

// Server exposes the operational surface: metrics, health, on-demand
// analysis and watchlist management. On-demand analysis shares the
// pipeline (and so the notification gate) with the scheduled cycle.
type Server struct {
	pipe *pipeline.Pipeline
	wl   *watchlist.Store
	http *http.Server
}

func NewServer(addr string, pipe *pipeline.Pipeline, wl *watchlist.Store) *Server {
	s := &Server{pipe: pipe, wl: wl}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/watchlist", s.handleWatchlist)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorWithErr(context.Background(), "Admin server stopped", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs one instrument through the full pipeline on
// demand: POST /analyze?symbol=AAPL.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol query parameter required"})
		return
	}

	res := s.pipe.AnalyzeOne(r.Context(), symbol)
	if res.Err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"symbol": symbol,
			"kind":   string(res.Kind),
			"error":  res.Err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleWatchlist manages priority instruments:
// GET lists, POST adds (JSON body), DELETE removes (?symbol=).
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"symbols": s.wl.Symbols()})
	case http.MethodPost:
		var e types.WatchlistEntry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil || e.Symbol == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a watchlist entry with a symbol"})
			return
		}
		if e.Multiplier <= 1.0 || e.Threshold <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multiplier must exceed 1.0 and threshold must be positive"})
			return
		}
		s.wl.Add(e)
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "symbol query parameter required"})
			return
		}
		if !s.wl.Remove(symbol) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not watchlisted"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"removed": symbol})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "unsupported method"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
