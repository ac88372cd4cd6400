package labtest

import (
	"context"

	"github.com/epiwatch/surveillance/pkg/audit"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/platform"
)

// Lab-test records ride on tracker events of the case program's lab stage.
// The service translates between the flat LabTest shape the screens edit and
// the event data-value list the platform stores.

const (
	StatusPending   = "PENDING_CONFIRMATION"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
)

type Service struct {
	client  *platform.Client
	reg     metadata.Registry
	program string
	stage   string
	orgUnit string
	audit   *audit.Repository
}

type Option func(*Service)

func WithAudit(repo *audit.Repository) Option {
	return func(s *Service) { s.audit = repo }
}

func NewService(client *platform.Client, reg metadata.Registry, program, stage, orgUnit string, opts ...Option) *Service {
	svc := &Service{client: client, reg: reg, program: program, stage: stage, orgUnit: orgUnit}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func (s *Service) List(ctx context.Context, status string, page, pageSize int) ([]models.LabTest, error) {
	q := platform.EventQuery{
		Program:      s.program,
		ProgramStage: s.stage,
		OrgUnit:      s.orgUnit,
		Page:         page,
		PageSize:     pageSize,
	}
	if status != "" {
		q.FilterValue = s.reg.DataElements.TestStatus + ":eq:" + status
	}

	events, err := s.client.ListEvents(ctx, q)
	if err != nil {
		return nil, err
	}

	tests := make([]models.LabTest, 0, len(events))
	for _, event := range events {
		tests = append(tests, FromEvent(event, s.reg))
	}
	return tests, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.LabTest, error) {
	event, err := s.client.GetEvent(ctx, id)
	if err != nil {
		return models.LabTest{}, err
	}
	return FromEvent(event, s.reg), nil
}

func (s *Service) Create(ctx context.Context, form models.LabTestForm, actor string) (models.LabTest, error) {
	event := s.toEvent("", form)
	if err := s.client.UpsertEvent(ctx, event); err != nil {
		return models.LabTest{}, err
	}
	if s.audit != nil {
		_ = s.audit.Append(ctx, models.AuditLog{
			Actor:    actor,
			Action:   "lab_test_created",
			Entity:   "lab_test",
			EntityID: form.CaseID,
			Payload:  map[string]interface{}{"testType": form.TestType},
		})
	}
	return FromEvent(event, s.reg), nil
}

func (s *Service) Update(ctx context.Context, id string, form models.LabTestForm, actor string) (models.LabTest, error) {
	if _, err := s.client.GetEvent(ctx, id); err != nil {
		return models.LabTest{}, err
	}

	event := s.toEvent(id, form)
	if err := s.client.UpsertEvent(ctx, event); err != nil {
		return models.LabTest{}, err
	}
	if s.audit != nil {
		_ = s.audit.Append(ctx, models.AuditLog{
			Actor:    actor,
			Action:   "lab_test_updated",
			Entity:   "lab_test",
			EntityID: id,
			Payload:  map[string]interface{}{"status": form.Status},
		})
	}
	return FromEvent(event, s.reg), nil
}

// FromEvent flattens an event's data values into a lab-test record.
func FromEvent(event models.Event, reg metadata.Registry) models.LabTest {
	test := models.LabTest{
		ID:          event.Event,
		CaseID:      event.TrackedEntity,
		PerformedAt: event.OccurredAt,
	}
	for _, dv := range event.DataValues {
		switch dv.DataElement {
		case reg.DataElements.Specimen:
			test.Specimen = dv.Value
		case reg.DataElements.TestType:
			test.TestType = dv.Value
		case reg.DataElements.TestResult:
			test.Result = dv.Value
		case reg.DataElements.TestStatus:
			test.Status = dv.Value
		case reg.DataElements.Laboratory:
			test.Laboratory = dv.Value
		}
	}
	if test.Status == "" {
		test.Status = StatusPending
	}
	return test
}

func (s *Service) toEvent(id string, form models.LabTestForm) models.Event {
	status := form.Status
	if status == "" {
		status = StatusPending
	}

	var values []models.DataValue
	values = setDataValue(values, s.reg.DataElements.TestType, form.TestType)
	values = setDataValue(values, s.reg.DataElements.TestStatus, status)
	if form.Specimen != "" {
		values = setDataValue(values, s.reg.DataElements.Specimen, form.Specimen)
	}
	if form.Result != "" {
		values = setDataValue(values, s.reg.DataElements.TestResult, form.Result)
	}
	if form.Laboratory != "" {
		values = setDataValue(values, s.reg.DataElements.Laboratory, form.Laboratory)
	}

	return models.Event{
		Event:         id,
		Program:       s.program,
		ProgramStage:  s.stage,
		OrgUnit:       s.orgUnit,
		TrackedEntity: form.CaseID,
		Status:        "ACTIVE",
		OccurredAt:    form.PerformedAt,
		DataValues:    values,
	}
}

// setDataValue mirrors the attribute-value upsert: one entry per data
// element, replaced in place.
func setDataValue(list []models.DataValue, dataElement, value string) []models.DataValue {
	for i := range list {
		if list[i].DataElement == dataElement {
			list[i].Value = value
			return list
		}
	}
	return append(list, models.DataValue{DataElement: dataElement, Value: value})
}
