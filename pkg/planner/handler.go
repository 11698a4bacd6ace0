package planner

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/calendon/calendon/internal/rest"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/calendon/calendon/pkg/generator"
	log "github.com/sirupsen/logrus"
)

type SuggestRequestDTO struct {
	Instruction string `json:"instruction"`
	Now         string `json:"now,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

type SuggestResponseDTO struct {
	TraceID string                      `json:"trace_id"`
	Plan    []candidate.CommitPlanEntry `json:"plan"`
}

type SyncRequestDTO struct {
	TraceID string                      `json:"trace_id"`
	Plan    []candidate.CommitPlanEntry `json:"plan"`
}

type SyncResponseDTO struct {
	TraceID string                   `json:"trace_id"`
	Results []candidate.CommitResult `json:"results"`
	Created int                      `json:"created"`
	Updated int                      `json:"updated"`
	Skipped int                      `json:"skipped"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SuggestEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Suggesting events")

	var req SuggestRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if req.Instruction == "" {
		writeError(w, http.StatusBadRequest, "Missing 'instruction' in request body", "")
		return
	}

	var now time.Time
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'now' format", "Must be in RFC3339 format")
			return
		}
		now = parsed
	}

	response, err := h.service.Suggest(r.Context(), SuggestRequest{
		Instruction: req.Instruction,
		Now:         now,
		Timezone:    req.Timezone,
	})
	if err != nil {
		var mErr *generator.MalformedOutputError
		if errors.As(err, &mErr) {
			writeError(w, http.StatusBadGateway, "Generator returned unparseable output", mErr.Err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(SuggestResponseDTO{
		TraceID: response.TraceID,
		Plan:    response.Entries,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SyncEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Trace("Syncing commit plan")

	var req SyncRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	results, err := h.service.Sync(r.Context(), req.TraceID, req.Plan)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := SyncResponseDTO{TraceID: req.TraceID, Results: results}
	for _, result := range results {
		switch result.ActionTaken {
		case candidate.TakenCreated:
			response.Created++
		case candidate.TakenUpdated:
			response.Updated++
		case candidate.TakenSkipped:
			response.Skipped++
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
