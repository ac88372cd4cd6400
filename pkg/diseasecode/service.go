package diseasecode

import (
	"context"

	"github.com/epiwatch/surveillance/pkg/audit"
	"github.com/epiwatch/surveillance/pkg/common/kafka"
	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/optionset"
	"github.com/epiwatch/surveillance/pkg/platform"
)

type Service struct {
	client   *platform.Client
	cache    *optionset.Cache
	reg      metadata.Registry
	audit    *audit.Repository
	producer *kafka.Producer
}

type Option func(*Service)

func WithAudit(repo *audit.Repository) Option {
	return func(s *Service) { s.audit = repo }
}

func WithPublisher(producer *kafka.Producer) Option {
	return func(s *Service) { s.producer = producer }
}

func NewService(client *platform.Client, cache *optionset.Cache, reg metadata.Registry, opts ...Option) *Service {
	svc := &Service{client: client, cache: cache, reg: reg}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

type ListResult struct {
	Items []models.DiseaseCodeView `json:"items"`
	Pager platform.Pager           `json:"pager"`
}

func (s *Service) List(ctx context.Context, search string, page, pageSize int) (ListResult, error) {
	resp, err := s.client.ListOptions(ctx, platform.OptionQuery{
		OptionSetID: s.reg.OptionSets.DiseaseCodes,
		Search:      search,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		return ListResult{}, err
	}

	items := make([]models.DiseaseCodeView, 0, len(resp.Options))
	for _, opt := range resp.Options {
		items = append(items, ToView(opt, s.reg, s.cache))
	}
	return ListResult{Items: items, Pager: resp.Pager}, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.DiseaseCodeView, error) {
	opt, err := s.client.GetOption(ctx, id)
	if err != nil {
		return models.DiseaseCodeView{}, err
	}
	return ToView(opt, s.reg, s.cache), nil
}

func (s *Service) Create(ctx context.Context, form models.DiseaseCodeForm, actor string) (models.DiseaseCodeView, error) {
	sortOrder, err := s.nextSortOrder(ctx)
	if err != nil {
		return models.DiseaseCodeView{}, err
	}

	payload := FromForm(form, sortOrder, s.reg)
	uid, err := s.client.CreateOption(ctx, payload)
	if err != nil {
		return models.DiseaseCodeView{}, err
	}

	s.afterMutation(ctx, "disease_code_created", uid, actor, map[string]interface{}{
		"code": form.Code,
		"name": form.Name,
	})

	payload.ID = uid
	return ToView(payload, s.reg, s.cache), nil
}

func (s *Service) Update(ctx context.Context, id string, form models.DiseaseCodeForm, actor string) (models.DiseaseCodeView, error) {
	current, err := s.client.GetOption(ctx, id)
	if err != nil {
		return models.DiseaseCodeView{}, err
	}

	payload := FromForm(form, current.SortOrder, s.reg)
	payload.ID = id
	if err := s.client.UpdateOption(ctx, id, payload); err != nil {
		return models.DiseaseCodeView{}, err
	}

	s.afterMutation(ctx, "disease_code_updated", id, actor, map[string]interface{}{
		"code": form.Code,
		"name": form.Name,
	})
	return ToView(payload, s.reg, s.cache), nil
}

func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if err := s.client.DeleteOption(ctx, s.reg.OptionSets.DiseaseCodes, id); err != nil {
		return err
	}
	s.afterMutation(ctx, "disease_code_deleted", id, actor, nil)
	return nil
}

// nextSortOrder appends new codes at the end of the set.
func (s *Service) nextSortOrder(ctx context.Context) (int, error) {
	resp, err := s.client.ListOptions(ctx, platform.OptionQuery{
		OptionSetID: s.reg.OptionSets.DiseaseCodes,
		Page:        1,
		PageSize:    1,
	})
	if err != nil {
		return 0, err
	}
	return resp.Pager.Total + 1, nil
}

// afterMutation refreshes the cached vocabulary and records the change.
// Everything here is best-effort: the platform mutation already succeeded.
func (s *Service) afterMutation(ctx context.Context, action, entityID, actor string, payload map[string]interface{}) {
	if err := s.cache.Refresh(ctx, s.reg.OptionSets.DiseaseCodes); err != nil {
		logger.Log.WithError(err).Warn("failed to refresh disease-code vocabulary")
	}
	if s.audit != nil {
		_ = s.audit.Append(ctx, models.AuditLog{
			Actor:    actor,
			Action:   action,
			Entity:   "disease_code",
			EntityID: entityID,
			Payload:  payload,
		})
	}
	if s.producer != nil {
		_ = s.producer.PublishChange(ctx, action, "disease_code", entityID, actor, payload)
	}
}
