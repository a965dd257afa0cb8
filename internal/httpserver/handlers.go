package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type statusResponse struct {
	State     string    `json:"state"`
	Uptime    string    `json:"uptime"`
	StartTime time.Time `json:"startTime"`
	UptimeSec float64   `json:"uptimeSeconds"`
}

type allocateRequest struct {
	OwnerID string `json:"ownerId"`
}

type prewarmRequest struct {
	Count int `json:"count"`
}

type prewarmResponse struct {
	Requested int `json:"requested"`
	Created   int `json:"created"`
}

type usageResponse struct {
	Pod    string `json:"pod"`
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// notFound mirrors the adapter's private "not found" error classification.
type notFound interface {
	IsNotFound()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if !s.appState.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if !s.appState.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	uptime := s.appState.GetUptime()

	s.writeJSON(w, r, http.StatusOK, statusResponse{
		State:     string(s.appState.GetState()),
		Uptime:    uptime.String(),
		StartTime: s.appState.GetStartTime(),
		UptimeSec: uptime.Seconds(),
	})
}

// handleAllocate hands out a warm pod. "No warm pod available" is a defined
// outcome, not a server error: the caller must cold-start.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OwnerID == "" {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "ownerId is required"})

		return
	}

	record, err := s.pool.GetWarm(ctx, req.OwnerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "allocation failed", "owner", req.OwnerID, "reason", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "allocation failed"})

		return
	}

	if record == nil {
		s.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "no warm pod available"})

		return
	}

	s.writeJSON(w, r, http.StatusOK, record)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	podName := chi.URLParam(r, "podName")

	s.pool.Release(r.Context(), podName)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePrewarm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req prewarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count <= 0 {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "count must be a positive integer"})

		return
	}

	created, err := s.pool.Prewarm(ctx, req.Count)
	if err != nil {
		s.logger.ErrorContext(ctx, "prewarm failed", "count", req.Count, "reason", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "prewarm failed"})

		return
	}

	s.writeJSON(w, r, http.StatusOK, prewarmResponse{
		Requested: req.Count,
		Created:   created,
	})
}

func (s *Server) handlePoolMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.pool.Metrics())
}

func (s *Server) handleListPods(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.pool.ListPods())
}

func (s *Server) handleGetPod(w http.ResponseWriter, r *http.Request) {
	podName := chi.URLParam(r, "podName")

	record := s.pool.GetPodInfo(podName)
	if record == nil {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "pod not tracked by pool"})

		return
	}

	s.writeJSON(w, r, http.StatusOK, record)
}

func (s *Server) handlePodUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	podName := chi.URLParam(r, "podName")

	if !s.pool.IsPoolMember(podName) {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "pod not tracked by pool"})

		return
	}

	usage, err := s.usage.PodUsageQuery(ctx, podName)
	if err != nil {
		var target notFound
		if errors.As(err, &target) {
			s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "no usage data for pod"})

			return
		}

		s.logger.ErrorContext(ctx, "pod usage query failed", "pod", podName, "reason", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "usage query failed"})

		return
	}

	s.writeJSON(w, r, http.StatusOK, usageResponse{
		Pod:    podName,
		CPU:    usage.CPUUsage.String(),
		Memory: usage.MemoryUsage.String(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response",
			"path", r.URL.Path,
			"error", err,
		)
	}
}
