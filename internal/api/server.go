// Package api provides the HTTP API for observing the creatures.
// GET endpoints are public (read-only diagnostics).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/goap-creatures/internal/creature"
	"github.com/talgya/goap-creatures/internal/engine"
	"github.com/talgya/goap-creatures/internal/persistence"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; plan history and snapshots need it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	srv *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	adminLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/world", s.handleWorld)
	mux.HandleFunc("/api/v1/creatures", s.handleCreatures)
	mux.HandleFunc("/api/v1/creature/", s.handleCreatureRoutes(adminLimiter))
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/plans", s.handlePlans)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSpeed)))
	mux.HandleFunc("/api/v1/snapshot", RateLimitMiddleware(adminLimiter, s.adminOnly(s.handleSnapshot)))

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no GOAPSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.CurrentStats()
	status := map[string]any{
		"name":            "goap-creatures",
		"frame":           stats.Frame,
		"frame_label":     humanize.Comma(int64(stats.Frame)),
		"sim_time":        s.Eng.SimTime(),
		"speed":           s.Eng.Speed(),
		"running":         s.Eng.Running(),
		"predators":       stats.Predators,
		"prey":            stats.Prey,
		"carcasses":       stats.Carcasses,
		"sleeping":        stats.Sleeping,
		"kills":           stats.Kills,
		"meals":           stats.Meals,
		"plans_adopted":   stats.PlansAdopted,
		"plans_completed": stats.PlansCompleted,
	}
	if s.DB != nil {
		if outcomes, err := s.DB.PlanOutcomes(); err == nil {
			status["plan_outcomes"] = outcomes
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.CurrentStats())
}

// handleWorld returns the static terrain features for map renderers.
func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"size":            s.Sim.Terrain.Size,
		"seed":            s.Sim.Terrain.Seed,
		"interest_points": s.Sim.Terrain.InterestPoints,
		"shelters":        s.Sim.Landmarks,
	})
}

func (s *Server) handleCreatures(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	result := make([]creature.Snapshot, 0)
	for _, c := range s.Sim.Snapshot() {
		if kind != "" && c.Kind != kind {
			continue
		}
		result = append(result, c)
	}
	writeJSON(w, result)
}

func (s *Server) handleCreatureRoutes(limiter *RateLimiter) http.HandlerFunc {
	reset := RateLimitMiddleware(limiter, s.adminOnly(s.handleReset))

	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "missing creature id", http.StatusBadRequest)
			return
		}
		if _, err := uuid.Parse(parts[3]); err != nil {
			http.Error(w, "invalid creature id", http.StatusBadRequest)
			return
		}

		// Route to /creature/:id/reset if requested.
		if len(parts) >= 5 && parts[4] == "reset" {
			reset(w, r)
			return
		}

		id := uuid.MustParse(parts[3])
		snap, ok := s.Sim.Creature(id)
		if !ok {
			http.Error(w, "creature not found", http.StatusNotFound)
			return
		}
		writeJSON(w, snap)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	id := uuid.MustParse(parts[3])

	if !s.Sim.ResetCreature(id) {
		http.Error(w, "no planning creature with that id", http.StatusNotFound)
		return
	}
	slog.Info("creature reset", "id", id)
	writeJSON(w, map[string]any{"id": id, "message": "goal reset"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	name := r.URL.Query().Get("creature")
	category := r.URL.Query().Get("category")

	events := s.Sim.RecentEvents(1000)

	var filtered []engine.Event
	for _, e := range events {
		if name != "" && e.Creature != name {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		filtered = append(filtered, e)
	}

	start := 0
	if len(filtered) > limit {
		start = len(filtered) - limit
	}
	writeJSON(w, filtered[start:])
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	plans, err := s.DB.RecentPlans(r.URL.Query().Get("creature"), queryLimit(r, 50))
	if err != nil {
		slog.Error("plan query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, plans)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveWorldState(s.Sim, s.Eng); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"frame":   s.Eng.Frame(),
		"message": "snapshot saved",
	})
}

// queryLimit reads ?limit= within 1-500.
func queryLimit(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
