package app

import (
	"database/sql"
	"time"

	"github.com/calendon/calendon/internal/config"
	"github.com/calendon/calendon/internal/event_bus"
	"github.com/calendon/calendon/internal/metrics"
	"github.com/calendon/calendon/internal/utils"
	"github.com/calendon/calendon/pkg/audit"
	"github.com/calendon/calendon/pkg/calendar_provider"
	"github.com/calendon/calendon/pkg/generator"
	"github.com/calendon/calendon/pkg/google"
	"github.com/calendon/calendon/pkg/planner"
	"github.com/calendon/calendon/pkg/repair"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	CalendarProvider *calendar_provider.CalendarProvider

	Generator generator.Generator

	RepairEngine    *repair.Engine
	PlannerEngine   *planner.Engine
	PlannerExecutor *planner.Executor
	PlannerService  planner.Service
	PlannerHandler  *planner.Handler

	AuditRepo     audit.Repository
	AuditRecorder *audit.Recorder
	AuditHandler  *audit.Handler

	Metrics *metrics.Metrics

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = utils.SystemClock{}

	deps.GoogleAuth = google.NewGoogleAuth(db, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.CalendarProvider = calendar_provider.NewCalendarProvider(deps.GoogleService, cfg.Google.CalendarId)

	deps.Generator = buildGenerator(cfg.LLM)

	deps.RepairEngine = repair.NewEngine(repair.Defaults{
		Timezone:    cfg.Planner.Timezone,
		MinDuration: time.Duration(cfg.Planner.MinDuration) * time.Minute,
	})
	deps.PlannerEngine = planner.NewEngine(deps.RepairEngine, planner.SlotConfig{
		Step:           time.Duration(cfg.Planner.SlotStep) * time.Minute,
		EarliestOffset: time.Duration(cfg.Planner.SearchBack) * time.Minute,
	})
	deps.PlannerExecutor = planner.NewExecutor(deps.CalendarProvider, cfg.Google.DryRun)
	deps.PlannerService = planner.NewService(
		deps.Generator,
		deps.CalendarProvider,
		deps.PlannerEngine,
		deps.PlannerExecutor,
		deps.EventBus,
		cfg.Planner.Timezone,
	)
	deps.PlannerHandler = planner.NewHandler(deps.PlannerService)

	deps.AuditRepo = audit.NewRepository(db)
	deps.AuditRecorder = audit.NewRecorder(deps.AuditRepo, deps.Clock)
	deps.AuditRecorder.Observe(deps.EventBus)
	deps.AuditHandler = audit.NewHandler(deps.AuditRepo)

	deps.Metrics = metrics.New()
	deps.Metrics.Observe(deps.EventBus)

	return deps
}

func buildGenerator(cfg config.LLM) generator.Generator {
	switch cfg.Provider {
	case "openai", "openrouter":
		return generator.NewOpenAIGenerator(generator.OpenAIConfig{
			Host:        cfg.Host,
			APIKey:      cfg.ApiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
	default:
		log.Infof("llm provider %q not configured, using offline generator", cfg.Provider)
		return generator.NewOfflineGenerator()
	}
}
