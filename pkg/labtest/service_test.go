package labtest

import (
	"testing"

	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
)

func TestFromEventFlattensDataValues(t *testing.T) {
	reg := metadata.DefaultRegistry()
	event := models.Event{
		Event:         "ev1",
		TrackedEntity: "case1",
		OccurredAt:    "2024-05-10",
		DataValues: []models.DataValue{
			{DataElement: reg.DataElements.Specimen, Value: "Blood"},
			{DataElement: reg.DataElements.TestType, Value: "PCR"},
			{DataElement: reg.DataElements.TestResult, Value: "Positive"},
			{DataElement: reg.DataElements.TestStatus, Value: StatusConfirmed},
			{DataElement: reg.DataElements.Laboratory, Value: "Central Lab"},
			{DataElement: "unrelatedDE1", Value: "ignored"},
		},
	}

	test := FromEvent(event, reg)
	if test.ID != "ev1" || test.CaseID != "case1" || test.PerformedAt != "2024-05-10" {
		t.Fatalf("event identity lost: %+v", test)
	}
	if test.Specimen != "Blood" || test.TestType != "PCR" || test.Result != "Positive" {
		t.Fatalf("data values lost: %+v", test)
	}
	if test.Status != StatusConfirmed || test.Laboratory != "Central Lab" {
		t.Fatalf("data values lost: %+v", test)
	}
}

func TestFromEventDefaultsStatusToPending(t *testing.T) {
	reg := metadata.DefaultRegistry()
	test := FromEvent(models.Event{Event: "ev1"}, reg)
	if test.Status != StatusPending {
		t.Fatalf("expected %s, got %q", StatusPending, test.Status)
	}
}

func TestToEventCarriesFormValues(t *testing.T) {
	reg := metadata.DefaultRegistry()
	svc := NewService(nil, reg, "prog1", "stage1", "ou1")

	form := models.LabTestForm{
		CaseID:      "case1",
		TestType:    "Culture",
		Specimen:    "Stool",
		Result:      "Negative",
		Laboratory:  "Regional Lab",
		Status:      StatusRejected,
		PerformedAt: "2024-05-11",
	}
	event := svc.toEvent("ev2", form)

	if event.Event != "ev2" || event.Program != "prog1" || event.ProgramStage != "stage1" {
		t.Fatalf("event wiring wrong: %+v", event)
	}
	if event.OrgUnit != "ou1" || event.TrackedEntity != "case1" || event.Status != "ACTIVE" {
		t.Fatalf("event wiring wrong: %+v", event)
	}

	round := FromEvent(event, reg)
	want := models.LabTest{
		CaseID:      "case1",
		Specimen:    "Stool",
		TestType:    "Culture",
		Result:      "Negative",
		Status:      StatusRejected,
		Laboratory:  "Regional Lab",
		PerformedAt: "2024-05-11",
	}
	round.ID = ""
	if round != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", round, want)
	}
}

func TestToEventOmitsEmptyOptionals(t *testing.T) {
	reg := metadata.DefaultRegistry()
	svc := NewService(nil, reg, "prog1", "stage1", "ou1")

	event := svc.toEvent("", models.LabTestForm{CaseID: "case1", TestType: "PCR"})
	if len(event.DataValues) != 2 {
		t.Fatalf("expected testType and status only, got %+v", event.DataValues)
	}

	test := FromEvent(event, reg)
	if test.Status != StatusPending {
		t.Fatalf("blank status must default to pending, got %q", test.Status)
	}
}

func TestSetDataValueReplacesInPlace(t *testing.T) {
	values := setDataValue(nil, "de1", "a")
	values = setDataValue(values, "de2", "b")
	values = setDataValue(values, "de1", "c")

	if len(values) != 2 {
		t.Fatalf("expected 2 entries, got %+v", values)
	}
	if values[0].DataElement != "de1" || values[0].Value != "c" {
		t.Fatalf("expected replacement in place, got %+v", values)
	}
}
