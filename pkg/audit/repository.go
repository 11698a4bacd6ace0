package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calendon/calendon/pkg/candidate"
	log "github.com/sirupsen/logrus"
)

var ErrTrailNotFound = errors.New("trail not found")

type Repository interface {
	StorePlan(ctx context.Context, plan PlanRecord) error
	StoreApplication(ctx context.Context, application ApplicationRecord) error
	GetTrail(ctx context.Context, traceId string) (Trail, error)
	ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StorePlan(ctx context.Context, plan PlanRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO audit_plan (trace_id, decided_at, entry_count) VALUES ($1, $2, $3)",
		plan.TraceID, plan.DecidedAt, len(plan.Entries),
	)
	if err != nil {
		err := fmt.Errorf("could not store audit plan: %v", err)
		log.Error(err)
		return err
	}

	query := `INSERT INTO audit_entry (
					trace_id,
					position,
					title,
					start_time,
					end_time,
					timezone,
					action,
					target_event_id,
					reason,
					repair_report
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, entry := range plan.Entries {
		report, err := json.Marshal(entry.Report)
		if err != nil {
			err := fmt.Errorf("could not marshal repair report: %v", err)
			log.Error(err)
			return err
		}
		_, err = tx.ExecContext(ctx, query,
			plan.TraceID,
			entry.Position,
			entry.Title,
			entry.Start,
			entry.End,
			entry.Timezone,
			string(entry.Action),
			entry.TargetEventID,
			entry.Reason,
			report,
		)
		if err != nil {
			err := fmt.Errorf("could not store audit entry: %v", err)
			log.Error(err)
			return err
		}
	}

	return tx.Commit()
}

func (r *RepositoryImpl) StoreApplication(ctx context.Context, application ApplicationRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var applicationId int
	err = tx.QueryRowContext(ctx,
		"INSERT INTO audit_application (trace_id, dry_run, applied_at) VALUES ($1, $2, $3) RETURNING id",
		application.TraceID, application.DryRun, application.AppliedAt,
	).Scan(&applicationId)
	if err != nil {
		err := fmt.Errorf("could not store audit application: %v", err)
		log.Error(err)
		return err
	}

	query := `INSERT INTO audit_result (
					application_id,
					position,
					action_taken,
					target_event_id,
					error
				) VALUES ($1, $2, $3, $4, $5)`
	for _, result := range application.Results {
		_, err = tx.ExecContext(ctx, query,
			applicationId,
			result.Position,
			string(result.ActionTaken),
			result.TargetEventID,
			result.Error,
		)
		if err != nil {
			err := fmt.Errorf("could not store audit result: %v", err)
			log.Error(err)
			return err
		}
	}

	return tx.Commit()
}

func (r *RepositoryImpl) GetTrail(ctx context.Context, traceId string) (Trail, error) {
	var trail Trail
	err := r.db.QueryRowContext(ctx,
		"SELECT trace_id, decided_at FROM audit_plan WHERE trace_id = $1", traceId,
	).Scan(&trail.Plan.TraceID, &trail.Plan.DecidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Trail{}, ErrTrailNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query audit plan: %v", err)
		log.Error(err)
		return Trail{}, err
	}

	entries, err := r.entriesFor(ctx, traceId)
	if err != nil {
		return Trail{}, err
	}
	trail.Plan.Entries = entries

	applications, err := r.applicationsFor(ctx, traceId)
	if err != nil {
		return Trail{}, err
	}
	trail.Applications = applications

	return trail, nil
}

func (r *RepositoryImpl) entriesFor(ctx context.Context, traceId string) ([]EntryRecord, error) {
	query := `SELECT
				position,
				title,
				start_time,
				end_time,
				timezone,
				action,
				target_event_id,
				reason,
				repair_report
			FROM audit_entry WHERE trace_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, traceId)
	if err != nil {
		err := fmt.Errorf("could not query audit entries: %v", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var entry EntryRecord
		var action string
		var report []byte
		if err := rows.Scan(
			&entry.Position,
			&entry.Title,
			&entry.Start,
			&entry.End,
			&entry.Timezone,
			&action,
			&entry.TargetEventID,
			&entry.Reason,
			&report,
		); err != nil {
			return nil, err
		}
		entry.Action = candidate.Action(action)
		if len(report) > 0 {
			if err := json.Unmarshal(report, &entry.Report); err != nil {
				log.Errorf("could not unmarshal repair report for trace %s: %v", traceId, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *RepositoryImpl) applicationsFor(ctx context.Context, traceId string) ([]ApplicationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, dry_run, applied_at FROM audit_application WHERE trace_id = $1 ORDER BY applied_at", traceId)
	if err != nil {
		err := fmt.Errorf("could not query audit applications: %v", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	type appRow struct {
		id     int
		record ApplicationRecord
	}
	var appRows []appRow
	for rows.Next() {
		row := appRow{record: ApplicationRecord{TraceID: traceId}}
		if err := rows.Scan(&row.id, &row.record.DryRun, &row.record.AppliedAt); err != nil {
			return nil, err
		}
		appRows = append(appRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	applications := make([]ApplicationRecord, 0, len(appRows))
	for _, row := range appRows {
		results, err := r.resultsFor(ctx, row.id)
		if err != nil {
			return nil, err
		}
		row.record.Results = results
		applications = append(applications, row.record)
	}
	return applications, nil
}

func (r *RepositoryImpl) resultsFor(ctx context.Context, applicationId int) ([]ResultRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT position, action_taken, target_event_id, error FROM audit_result WHERE application_id = $1 ORDER BY position",
		applicationId)
	if err != nil {
		err := fmt.Errorf("could not query audit results: %v", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var result ResultRecord
		var taken string
		if err := rows.Scan(&result.Position, &taken, &result.TargetEventID, &result.Error); err != nil {
			return nil, err
		}
		result.ActionTaken = candidate.ActionTaken(taken)
		results = append(results, result)
	}
	return results, rows.Err()
}

func (r *RepositoryImpl) ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT trace_id, decided_at FROM audit_plan ORDER BY decided_at DESC LIMIT $1", limit)
	if err != nil {
		err := fmt.Errorf("could not query audit plans: %v", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var plans []PlanRecord
	for rows.Next() {
		var plan PlanRecord
		if err := rows.Scan(&plan.TraceID, &plan.DecidedAt); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
