package audit

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	plans        map[string]PlanRecord
	applications map[string][]ApplicationRecord
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		plans:        map[string]PlanRecord{},
		applications: map[string][]ApplicationRecord{},
	}
}

func (s *RepositoryStub) StorePlan(_ context.Context, plan PlanRecord) error {
	s.plans[plan.TraceID] = plan
	return nil
}

func (s *RepositoryStub) StoreApplication(_ context.Context, application ApplicationRecord) error {
	s.applications[application.TraceID] = append(s.applications[application.TraceID], application)
	return nil
}

func (s *RepositoryStub) GetTrail(_ context.Context, traceId string) (Trail, error) {
	plan, ok := s.plans[traceId]
	if !ok {
		return Trail{}, ErrTrailNotFound
	}
	return Trail{Plan: plan, Applications: s.applications[traceId]}, nil
}

func (s *RepositoryStub) ListRecentPlans(_ context.Context, limit int) ([]PlanRecord, error) {
	plans := make([]PlanRecord, 0, len(s.plans))
	for _, plan := range s.plans {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].DecidedAt.After(plans[j].DecidedAt) })
	if len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}
