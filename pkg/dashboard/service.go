package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/epiwatch/surveillance/pkg/alerts"
	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/platform"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Service composes the landing-page view model from independent analytics
// and tracker queries. Every upstream call is individually wrapped: a
// failing metric logs and falls back to zero so the rest of the dashboard
// still renders.
type Service struct {
	client       *platform.Client
	reg          metadata.Registry
	orgUnit      string
	caseProgram  string
	labStage     string
	alertProgram string
	detailLimit  int64
	now          func() time.Time
}

func NewService(client *platform.Client, reg metadata.Registry, orgUnit, caseProgram, labStage, alertProgram string, detailLimit int) *Service {
	if detailLimit <= 0 {
		detailLimit = 8
	}
	return &Service{
		client:       client,
		reg:          reg,
		orgUnit:      orgUnit,
		caseProgram:  caseProgram,
		labStage:     labStage,
		alertProgram: alertProgram,
		detailLimit:  int64(detailLimit),
		now:          time.Now,
	}
}

const todoPageSize = 20

func (s *Service) Overview(ctx context.Context) models.DashboardOverview {
	overview := models.DashboardOverview{GeneratedAt: s.now()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview.Metrics.ProcessingCases = s.metricCount(gctx, s.reg.DataElements.ProcessingCases)
		return nil
	})
	g.Go(func() error {
		overview.Metrics.VerifiedCases = s.metricCount(gctx, s.reg.DataElements.VerifiedCases)
		return nil
	})
	g.Go(func() error {
		overview.Metrics.NewCases = s.newCaseTrend(gctx)
		return nil
	})
	g.Go(func() error {
		overview.Metrics.Alerts = s.metricCount(gctx, s.reg.DataElements.AlertCount)
		return nil
	})
	g.Go(func() error {
		overview.VerifiedCases = s.verifiedCaseList(gctx)
		return nil
	})
	g.Go(func() error {
		overview.PendingTests = s.pendingTestList(gctx)
		return nil
	})
	g.Go(func() error {
		overview.PendingAlerts = s.pendingAlertList(gctx)
		return nil
	})

	// the closures never fail; Wait only joins them
	_ = g.Wait()
	return overview
}

// metricCount sums the current month's analytics values for one data
// element, falling back to zero.
func (s *Service) metricCount(ctx context.Context, dataElement string) int {
	period := formatPeriod(s.now())
	result, err := s.client.Analytics(ctx, dataElement, []string{period}, s.orgUnit)
	if err != nil {
		logger.Log.WithError(err).WithField("data_element", dataElement).Warn("dashboard metric unavailable")
		return 0
	}
	totals := sumByPeriod(result)
	return int(totals[period])
}

func (s *Service) newCaseTrend(ctx context.Context) models.MetricTrend {
	now := s.now()
	current := formatPeriod(now)
	prior := formatPeriod(priorMonth(now))

	result, err := s.client.Analytics(ctx, s.reg.DataElements.NewCases, []string{prior, current}, s.orgUnit)
	if err != nil {
		logger.Log.WithError(err).Warn("new-case trend unavailable")
		return models.MetricTrend{}
	}

	totals := sumByPeriod(result)
	return models.MetricTrend{
		Count: int(totals[current]),
		Trend: Trend(totals[prior], totals[current]),
	}
}

func (s *Service) verifiedCaseList(ctx context.Context) []models.TodoItem {
	events, err := s.client.ListEvents(ctx, platform.EventQuery{
		Program:  s.caseProgram,
		OrgUnit:  s.orgUnit,
		Status:   "COMPLETED",
		Page:     1,
		PageSize: todoPageSize,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("verified-case list unavailable")
		return []models.TodoItem{}
	}

	items := make([]models.TodoItem, 0, len(events))
	entityIDs := make([]string, 0, len(events))
	for _, event := range events {
		items = append(items, models.TodoItem{
			ID:         event.Event,
			Kind:       "verified_case",
			Status:     event.Status,
			OccurredAt: event.OccurredAt,
		})
		entityIDs = append(entityIDs, event.TrackedEntity)
	}
	s.enrich(ctx, items, entityIDs)
	return items
}

func (s *Service) pendingTestList(ctx context.Context) []models.TodoItem {
	events, err := s.client.ListEvents(ctx, platform.EventQuery{
		Program:      s.caseProgram,
		ProgramStage: s.labStage,
		OrgUnit:      s.orgUnit,
		FilterValue:  s.reg.DataElements.TestStatus + ":eq:PENDING_CONFIRMATION",
		Page:         1,
		PageSize:     todoPageSize,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("pending-test list unavailable")
		return []models.TodoItem{}
	}

	items := make([]models.TodoItem, 0, len(events))
	entityIDs := make([]string, 0, len(events))
	for _, event := range events {
		item := models.TodoItem{
			ID:         event.Event,
			Kind:       "pending_test",
			Status:     "PENDING_CONFIRMATION",
			OccurredAt: event.OccurredAt,
		}
		for _, dv := range event.DataValues {
			if dv.DataElement == s.reg.DataElements.TestType {
				item.Title = dv.Value
			}
		}
		items = append(items, item)
		entityIDs = append(entityIDs, event.TrackedEntity)
	}
	s.enrich(ctx, items, entityIDs)
	return items
}

func (s *Service) pendingAlertList(ctx context.Context) []models.TodoItem {
	events, err := s.client.ListEvents(ctx, platform.EventQuery{
		Program:  s.alertProgram,
		OrgUnit:  s.orgUnit,
		Status:   "ACTIVE",
		Page:     1,
		PageSize: todoPageSize,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("pending-alert list unavailable")
		return []models.TodoItem{}
	}

	items := make([]models.TodoItem, 0, len(events))
	for _, event := range events {
		alert := alerts.ToItem(event, s.reg)
		items = append(items, models.TodoItem{
			ID:         alert.ID,
			Kind:       "pending_alert",
			Title:      alert.Title,
			Subject:    alert.Source,
			Status:     alert.Status,
			OccurredAt: alert.Time,
		})
	}
	return items
}

// enrich resolves the case subject for each item through per-entity detail
// fetches. The fan-out is bounded so a long to-do list cannot flood the
// platform with concurrent requests.
func (s *Service) enrich(ctx context.Context, items []models.TodoItem, entityIDs []string) {
	sem := semaphore.NewWeighted(s.detailLimit)
	var wg sync.WaitGroup

	for i := range items {
		if entityIDs[i] == "" {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			entity, err := s.client.GetTrackedEntity(ctx, entityIDs[i])
			if err != nil {
				logger.Log.WithError(err).WithField("entity", entityIDs[i]).Debug("entity detail unavailable")
				return
			}
			items[i].Subject = subjectName(entity)
		}(i)
	}
	wg.Wait()
}

func subjectName(entity models.TrackedEntity) string {
	for _, enrollment := range entity.Enrollments {
		for _, attr := range enrollment.Attributes {
			if attr.Value != "" {
				return attr.Value
			}
		}
	}
	for _, attr := range entity.Attributes {
		if attr.Value != "" {
			return attr.Value
		}
	}
	return ""
}

// sumByPeriod reduces an analytics grid to a total per period column value.
func sumByPeriod(result platform.AnalyticsResult) map[string]float64 {
	peIdx, valueIdx := -1, -1
	for i, col := range result.Columns {
		switch col {
		case "pe":
			peIdx = i
		case "value":
			valueIdx = i
		}
	}

	totals := map[string]float64{}
	for _, row := range result.Rows {
		if peIdx < 0 || valueIdx < 0 || peIdx >= len(row) || valueIdx >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[valueIdx], 64)
		if err != nil {
			continue
		}
		totals[row[peIdx]] += v
	}
	return totals
}

func formatPeriod(t time.Time) string {
	return t.Format("200601")
}

func priorMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, -1, 0)
}
