package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleAIStats(w http.ResponseWriter, r *http.Request) {
	if s.ai == nil {
		jsonError(w, "ai stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.ai.Model(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.ai.Stats(),
	})
}
