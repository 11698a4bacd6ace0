package metrics

import (
	"github.com/calendon/calendon/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the suggestion pipeline.
type Metrics struct {
	SuggestionsTotal prometheus.Counter
	PlanEntriesTotal *prometheus.CounterVec
	ShiftedTotal     prometheus.Counter
	CommitsTotal     *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SuggestionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "calendon_suggestions_total",
			Help: "Number of suggestion requests processed",
		}),
		PlanEntriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "calendon_plan_entries_total",
			Help: "Number of commit plan entries produced, by action",
		}, []string{"action"}),
		ShiftedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "calendon_slot_shifts_total",
			Help: "Number of candidates moved to a free slot",
		}),
		CommitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "calendon_commits_total",
			Help: "Number of commit results, by action taken",
		}, []string{"action_taken"}),
	}
}

// Observe wires the metrics to the application event bus.
func (m *Metrics) Observe(bus *event_bus.EventBus) {
	bus.Subscribe(event_bus.PlanDecidedEvent, func(e event_bus.Event) error {
		decided, ok := e.Data.(event_bus.PlanDecided)
		if !ok {
			return nil
		}
		m.SuggestionsTotal.Inc()
		for _, entry := range decided.Entries {
			m.PlanEntriesTotal.WithLabelValues(string(entry.Action)).Inc()
			if entry.Reason == "shifted" {
				m.ShiftedTotal.Inc()
			}
		}
		return nil
	})

	bus.Subscribe(event_bus.PlanAppliedEvent, func(e event_bus.Event) error {
		applied, ok := e.Data.(event_bus.PlanApplied)
		if !ok {
			return nil
		}
		for _, result := range applied.Results {
			m.CommitsTotal.WithLabelValues(string(result.ActionTaken)).Inc()
		}
		return nil
	})
}
