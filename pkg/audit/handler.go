package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/calendon/calendon/internal/rest"
	"github.com/calendon/calendon/pkg/candidate"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type planDTO struct {
	TraceID    string     `json:"trace_id"`
	DecidedAt  string     `json:"decided_at"`
	EntryCount int        `json:"entry_count"`
	Entries    []entryDTO `json:"entries,omitempty"`
}

type entryDTO struct {
	Position      int                    `json:"position"`
	Title         string                 `json:"title"`
	Start         string                 `json:"start"`
	End           string                 `json:"end"`
	Timezone      string                 `json:"timezone"`
	Action        string                 `json:"action"`
	TargetEventID string                 `json:"target_event_id,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Report        candidate.RepairReport `json:"repair_report,omitempty"`
}

type applicationDTO struct {
	DryRun    bool        `json:"dry_run"`
	AppliedAt string      `json:"applied_at"`
	Results   []resultDTO `json:"results"`
}

type resultDTO struct {
	Position      int    `json:"position"`
	ActionTaken   string `json:"action_taken"`
	TargetEventID string `json:"target_event_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

type trailDTO struct {
	Plan         planDTO          `json:"plan"`
	Applications []applicationDTO `json:"applications"`
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) GetTrail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	traceId := mux.Vars(r)["traceId"]

	trail, err := h.repo.GetTrail(r.Context(), traceId)
	if err != nil {
		if errors.Is(err, ErrTrailNotFound) {
			w.WriteHeader(http.StatusNotFound)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Trail not found"})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		log.Errorf("failed to load trail %s: %v", traceId, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(toTrailDTO(trail)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid 'limit' parameter"})
			if encodeErr != nil {
				http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			}
			return
		}
		limit = parsed
	}

	plans, err := h.repo.ListRecentPlans(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]planDTO, 0, len(plans))
	for _, plan := range plans {
		dtos = append(dtos, toPlanDTO(plan))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toTrailDTO(trail Trail) trailDTO {
	dto := trailDTO{
		Plan:         toPlanDTO(trail.Plan),
		Applications: make([]applicationDTO, 0, len(trail.Applications)),
	}
	for _, application := range trail.Applications {
		results := make([]resultDTO, 0, len(application.Results))
		for _, result := range application.Results {
			results = append(results, resultDTO{
				Position:      result.Position,
				ActionTaken:   string(result.ActionTaken),
				TargetEventID: result.TargetEventID,
				Error:         result.Error,
			})
		}
		dto.Applications = append(dto.Applications, applicationDTO{
			DryRun:    application.DryRun,
			AppliedAt: application.AppliedAt.Format(time.RFC3339),
			Results:   results,
		})
	}
	return dto
}

func toPlanDTO(plan PlanRecord) planDTO {
	entries := make([]entryDTO, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		entries = append(entries, entryDTO{
			Position:      entry.Position,
			Title:         entry.Title,
			Start:         entry.Start.Format(time.RFC3339),
			End:           entry.End.Format(time.RFC3339),
			Timezone:      entry.Timezone,
			Action:        string(entry.Action),
			TargetEventID: entry.TargetEventID,
			Reason:        entry.Reason,
			Report:        entry.Report,
		})
	}
	return planDTO{
		TraceID:    plan.TraceID,
		DecidedAt:  plan.DecidedAt.Format(time.RFC3339),
		EntryCount: len(plan.Entries),
		Entries:    entries,
	}
}
