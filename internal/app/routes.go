package app

import (
	"encoding/json"
	"net/http"

	"github.com/calendon/calendon/internal/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Suggestion pipeline
	r.HandleFunc("/api/events/suggest", deps.PlannerHandler.SuggestEvents).Methods("POST")
	r.HandleFunc("/api/events/sync", deps.PlannerHandler.SyncEvents).Methods("POST")

	// Audit trail
	r.HandleFunc("/api/audit", deps.AuditHandler.ListRecent).Methods("GET")
	r.HandleFunc("/api/audit/{traceId}", deps.AuditHandler.GetTrail).Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth", deps.GoogleAuth.IsAuthenticated).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")

	// Operational
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
}
