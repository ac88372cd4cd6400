package alerts

import (
	"context"

	"github.com/epiwatch/surveillance/pkg/audit"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/platform"
)

// Alerts are events in the alert program. Each event carries a flat
// key-value list of data elements; the registry maps element ids to the
// semantic fields the screens display.

type Service struct {
	client  *platform.Client
	reg     metadata.Registry
	program string
	orgUnit string
	audit   *audit.Repository
}

type Option func(*Service)

func WithAudit(repo *audit.Repository) Option {
	return func(s *Service) { s.audit = repo }
}

func NewService(client *platform.Client, reg metadata.Registry, program, orgUnit string, opts ...Option) *Service {
	svc := &Service{client: client, reg: reg, program: program, orgUnit: orgUnit}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

func (s *Service) ListPending(ctx context.Context, page, pageSize int) ([]models.AlertItem, error) {
	events, err := s.client.ListEvents(ctx, platform.EventQuery{
		Program:  s.program,
		OrgUnit:  s.orgUnit,
		Status:   "ACTIVE",
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.AlertItem, 0, len(events))
	for _, event := range events {
		items = append(items, ToItem(event, s.reg))
	}
	return items, nil
}

// Respond acknowledges an alert: the event is completed on the platform so
// it drops out of every pending view.
func (s *Service) Respond(ctx context.Context, id string, form models.AlertResponseForm, actor string) error {
	event, err := s.client.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	event.Status = "COMPLETED"
	if err := s.client.UpsertEvent(ctx, event); err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.Append(ctx, models.AuditLog{
			Actor:    actor,
			Action:   "alert_responded",
			Entity:   "alert",
			EntityID: id,
			Payload: map[string]interface{}{
				"action":  form.Action,
				"comment": form.Comment,
			},
		})
	}
	return nil
}

// ToItem builds the display string fields for one alert event from its flat
// data-value list. Unknown data elements are ignored.
func ToItem(event models.Event, reg metadata.Registry) models.AlertItem {
	item := models.AlertItem{
		ID:      event.Event,
		Status:  event.Status,
		OrgUnit: event.OrgUnit,
	}
	for _, dv := range event.DataValues {
		switch reg.AlertField(dv.DataElement) {
		case "title":
			item.Title = dv.Value
		case "type":
			item.Type = dv.Value
		case "content":
			item.Content = dv.Value
		case "source":
			item.Source = dv.Value
		case "time":
			item.Time = dv.Value
		case "orgUnit":
			item.OrgUnit = dv.Value
		case "status":
			item.Status = dv.Value
		}
	}
	if item.Time == "" {
		item.Time = event.OccurredAt
	}
	return item
}
