package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
	"github.com/musaraza08/ant-colony-optimisation/internal/colony/notifiers"
)

// extractRunID extracts the run ID from a path like "/runs/{runID}/..."
// and returns the ID plus the remaining path.
func extractRunID(path string) (colony.RunID, string) {
	if !strings.HasPrefix(path, "/runs/") {
		return "", ""
	}

	rest := strings.TrimPrefix(path, "/runs/")
	idx := strings.Index(rest, "/")
	if idx == -1 {
		return colony.RunID(rest), ""
	}
	return colony.RunID(rest[:idx]), rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /runs
// Body: { "id": "optional-run-id", "config": { ...scenario config... } }
// Creates a new run; an omitted config uses the default scenario and an
// omitted ID gets a generated one.
type createRunRequest struct {
	ID     string         `json:"id"`
	Config *colony.Config `json:"config"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	cfg := colony.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	id, err := s.createRun(colony.RunID(req.ID), cfg)
	if err != nil {
		http.Error(w, "cannot create run: "+err.Error(), http.StatusBadRequest)
		return
	}

	sim, _ := s.manager.GetRun(id)
	s.logger.Infof("Run created: run_id=%s seed=%d grid=%dx%d ants=%d",
		id, sim.Seed(), cfg.GridWidth, cfg.GridHeight, cfg.NumAnts)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]any{"run_id": string(id), "seed": sim.Seed()}); err != nil {
		http.Error(w, "cannot encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs
// List all run IDs.
func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	runIDs := s.manager.ListRuns()

	ids := make([]string, len(runIDs))
	for i, id := range runIDs {
		ids[i] = string(id)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"runs": ids}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{runID}/state
// Returns the full run state as snapshot JSON: grid, pheromone field, ants,
// remaining food and metrics.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	snap := sim.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{runID}/metrics
// Returns just the aggregate counters, cheaper than the full state.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sim.Metrics()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /runs/{runID}/tick
// Manually advance the run. Query param: n (default 1) for multiple steps.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	n := 1
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid n: must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	for range n {
		sim.Tick()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sim.Metrics()); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /runs/{runID}/start
// Start the run auto-ticking. Query param: interval in milliseconds
// (default: 100ms).
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	interval := 100 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		if ms, err := strconv.Atoi(intervalStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		} else {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
	}

	sim.Run(interval)
	s.logger.Infof("Run started: run_id=%s interval=%v", runID, interval)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run started"))
}

// POST /runs/{runID}/stop
// Stop the run auto-ticking.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	sim.Stop()
	s.logger.Infof("Run stopped: run_id=%s", runID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run stopped"))
}

// DELETE /runs/{runID}
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	if err := s.manager.DeleteRun(runID); err != nil {
		s.logger.Warnf("Failed to delete run: run_id=%s error=%v", runID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Run deleted: run_id=%s", runID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run deleted"))
}

// POST /runs/{runID}/snapshot
// Triggers a synchronous snapshot save to disk.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	sim, exists := s.manager.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}

	path, err := colony.WriteSnapshotFile(s.snapshotDir, sim.Snapshot())
	if err != nil {
		s.logger.Errorf("Failed to save snapshot: run_id=%s error=%v", runID, err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Debugf("Snapshot saved: run_id=%s path=%s", runID, path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok", "path": path}); err != nil {
		http.Error(w, "cannot encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{runID}/ws
// Upgrades the connection and streams run events (first food, deliveries,
// depleted sources, completion) as JSON messages.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	runID, _ := extractRunID(r.URL.Path)
	if _, exists := s.manager.GetRun(runID); !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	upgrader := s.wsNotifier.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: run_id=%s error=%v", runID, err)
		return
	}

	s.wsNotifier.RegisterClient(conn)
	s.logger.Debugf("WebSocket client connected: run_id=%s clients=%d", runID, s.wsNotifier.ClientCount())

	// Drain the read side so client disconnects are detected.
	go func() {
		defer s.wsNotifier.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleRunRoutes routes requests to run-specific handlers.
// Handles paths like /runs/{runID}/state, /runs/{runID}/tick, etc.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	runID, remainingPath := extractRunID(r.URL.Path)
	if runID == "" {
		http.Error(w, "run ID is required in path: /runs/{runID}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/state" && r.Method == http.MethodGet:
		s.handleState(w, r)
	case remainingPath == "/metrics" && r.Method == http.MethodGet:
		s.handleMetrics(w, r)
	case remainingPath == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r)
	case remainingPath == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		s.handleStop(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/ws" && r.Method == http.MethodGet:
		s.handleWebSocket(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteRun(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes handles notifier management endpoints.
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers.
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"notifiers": list}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Register a new notifier.
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier colony.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("Notifier registered: id=%s type=%s", req.ID, req.Type)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier.
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}
