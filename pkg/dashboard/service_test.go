package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epiwatch/surveillance/pkg/common/logger"
	"github.com/epiwatch/surveillance/pkg/metadata"
	"github.com/epiwatch/surveillance/pkg/platform"
)

func init() {
	logger.Init()
}

const (
	testOrgUnit      = "OU1"
	testCaseProgram  = "CaseProg1"
	testLabStage     = "LabStage1"
	testAlertProgram = "AlertProg1"
)

func analyticsPayload(dx string, perPeriod map[string]string) map[string]interface{} {
	rows := [][]string{}
	for pe, value := range perPeriod {
		rows = append(rows, []string{dx, pe, value})
	}
	return map[string]interface{}{
		"headers": []map[string]string{{"name": "dx"}, {"name": "pe"}, {"name": "value"}},
		"rows":    rows,
	}
}

func fakePlatform(t *testing.T, reg metadata.Registry) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
		var dx string
		for _, dim := range r.URL.Query()["dimension"] {
			if strings.HasPrefix(dim, "dx:") {
				dx = strings.TrimPrefix(dim, "dx:")
			}
		}
		switch dx {
		case reg.DataElements.ProcessingCases:
			json.NewEncoder(w).Encode(analyticsPayload(dx, map[string]string{"202405": "12"}))
		case reg.DataElements.VerifiedCases:
			json.NewEncoder(w).Encode(analyticsPayload(dx, map[string]string{"202405": "7"}))
		case reg.DataElements.NewCases:
			json.NewEncoder(w).Encode(analyticsPayload(dx, map[string]string{"202404": "10", "202405": "15"}))
		default:
			// the alert metric is down; the dashboard must still render
			http.Error(w, `{"message":"analytics unavailable"}`, http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/tracker/events", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("program") == testCaseProgram && q.Get("programStage") == testLabStage:
			json.NewEncoder(w).Encode(map[string]interface{}{"instances": []map[string]interface{}{{
				"event":         "ev-test-1",
				"trackedEntity": "te2",
				"occurredAt":    "2024-05-10",
				"dataValues": []map[string]string{
					{"dataElement": reg.DataElements.TestType, "value": "PCR"},
					{"dataElement": reg.DataElements.TestStatus, "value": "PENDING_CONFIRMATION"},
				},
			}}})
		case q.Get("program") == testCaseProgram:
			json.NewEncoder(w).Encode(map[string]interface{}{"instances": []map[string]interface{}{
				{"event": "ev-case-1", "trackedEntity": "te1", "status": "COMPLETED", "occurredAt": "2024-05-08"},
				{"event": "ev-case-2", "trackedEntity": "", "status": "COMPLETED", "occurredAt": "2024-05-09"},
			}})
		case q.Get("program") == testAlertProgram:
			json.NewEncoder(w).Encode(map[string]interface{}{"instances": []map[string]interface{}{{
				"event":      "ev-alert-1",
				"status":     "ACTIVE",
				"occurredAt": "2024-05-11",
				"dataValues": []map[string]string{
					{"dataElement": "At4wQjZmrK2", "value": "Cholera cluster"},
					{"dataElement": "As2jYwQdnE8", "value": "Regional lab"},
				},
			}}})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"instances": []interface{}{}})
		}
	})

	mux.HandleFunc("/tracker/trackedEntities/te1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"trackedEntity": "te1",
			"enrollments": []map[string]interface{}{{
				"enrollment": "en1",
				"attributes": []map[string]string{{"attribute": "name", "value": "Alice Kim"}},
			}},
		})
	})
	mux.HandleFunc("/tracker/trackedEntities/te2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"trackedEntity": "te2",
			"attributes":    []map[string]string{{"attribute": "name", "value": "Ben Osei"}},
		})
	})

	return httptest.NewServer(mux)
}

func newTestService(t *testing.T) (*Service, *httptest.Server) {
	t.Helper()
	reg := metadata.DefaultRegistry()
	server := fakePlatform(t, reg)
	client := platform.NewWithClient(server.URL, server.Client())
	svc := NewService(client, reg, testOrgUnit, testCaseProgram, testLabStage, testAlertProgram, 4)
	svc.now = func() time.Time { return time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC) }
	return svc, server
}

func TestOverviewAggregates(t *testing.T) {
	svc, server := newTestService(t)
	defer server.Close()

	overview := svc.Overview(context.Background())

	if overview.Metrics.ProcessingCases != 12 {
		t.Fatalf("processing cases = %d, want 12", overview.Metrics.ProcessingCases)
	}
	if overview.Metrics.VerifiedCases != 7 {
		t.Fatalf("verified cases = %d, want 7", overview.Metrics.VerifiedCases)
	}
	if overview.Metrics.NewCases.Count != 15 {
		t.Fatalf("new cases = %d, want 15", overview.Metrics.NewCases.Count)
	}
	if overview.Metrics.NewCases.Trend != 50 {
		t.Fatalf("trend = %v, want 50", overview.Metrics.NewCases.Trend)
	}
	// the failing alert metric falls back to zero instead of blocking
	if overview.Metrics.Alerts != 0 {
		t.Fatalf("alerts = %d, want 0", overview.Metrics.Alerts)
	}
}

func TestOverviewTodoLists(t *testing.T) {
	svc, server := newTestService(t)
	defer server.Close()

	overview := svc.Overview(context.Background())

	if len(overview.VerifiedCases) != 2 {
		t.Fatalf("expected 2 verified cases, got %d", len(overview.VerifiedCases))
	}
	if overview.VerifiedCases[0].Subject != "Alice Kim" {
		t.Fatalf("expected enriched subject, got %q", overview.VerifiedCases[0].Subject)
	}
	if overview.VerifiedCases[1].Subject != "" {
		t.Fatalf("item without tracked entity must stay unenriched, got %q", overview.VerifiedCases[1].Subject)
	}

	if len(overview.PendingTests) != 1 {
		t.Fatalf("expected 1 pending test, got %d", len(overview.PendingTests))
	}
	if overview.PendingTests[0].Title != "PCR" {
		t.Fatalf("pending test title = %q, want PCR", overview.PendingTests[0].Title)
	}
	if overview.PendingTests[0].Subject != "Ben Osei" {
		t.Fatalf("pending test subject = %q, want Ben Osei", overview.PendingTests[0].Subject)
	}

	if len(overview.PendingAlerts) != 1 {
		t.Fatalf("expected 1 pending alert, got %d", len(overview.PendingAlerts))
	}
	if overview.PendingAlerts[0].Title != "Cholera cluster" {
		t.Fatalf("alert title = %q", overview.PendingAlerts[0].Title)
	}
	if overview.PendingAlerts[0].Subject != "Regional lab" {
		t.Fatalf("alert subject = %q", overview.PendingAlerts[0].Subject)
	}
}

func TestSumByPeriodIgnoresBadRows(t *testing.T) {
	result := platform.AnalyticsResult{
		Columns: []string{"dx", "pe", "value"},
		Rows: [][]string{
			{"d1", "202405", "3"},
			{"d1", "202405", "4"},
			{"d1", "202405", "not-a-number"},
			{"d1"},
		},
	}
	totals := sumByPeriod(result)
	if totals["202405"] != 7 {
		t.Fatalf("expected 7, got %v", totals["202405"])
	}
}
