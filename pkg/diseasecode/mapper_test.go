package diseasecode

import (
	"testing"

	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
)

type stubVocab map[string]string

func (s stubVocab) NameByCode(optionSetID, code string) string {
	return s[optionSetID+"/"+code]
}

func TestFormRoundTripsThroughView(t *testing.T) {
	reg := metadata.DefaultRegistry()
	notifiable := true
	form := models.DiseaseCodeForm{
		Code:             "CHOL",
		Name:             "Cholera",
		ICDCode:          "A00",
		Category:         "WATERBORNE",
		RiskLevel:        "HIGH",
		RelatedPathogens: []string{"VIBRIO", "OTHER"},
		Notifiable:       &notifiable,
		Description:      "Acute diarrhoeal infection",
	}

	opt := FromForm(form, 12, reg)
	if opt.OptionSet == nil || opt.OptionSet.ID != reg.OptionSets.DiseaseCodes {
		t.Fatalf("option not bound to the disease-code set: %+v", opt.OptionSet)
	}
	if opt.SortOrder != 12 {
		t.Fatalf("expected sortOrder 12, got %d", opt.SortOrder)
	}

	names := stubVocab{
		reg.OptionSets.DiseaseCategory + "/WATERBORNE": "Waterborne",
		reg.OptionSets.RiskLevel + "/HIGH":             "High",
	}
	view := ToView(opt, reg, names)

	if view.Code != "CHOL" || view.Name != "Cholera" {
		t.Fatalf("identity fields lost: %+v", view)
	}
	if view.ICDCode != "A00" {
		t.Fatalf("icd code lost: %q", view.ICDCode)
	}
	if view.Category != "WATERBORNE" || view.CategoryName != "Waterborne" {
		t.Fatalf("category not resolved: %q %q", view.Category, view.CategoryName)
	}
	if view.RiskLevel != "HIGH" || view.RiskLevelName != "High" {
		t.Fatalf("risk level not resolved: %q %q", view.RiskLevel, view.RiskLevelName)
	}
	if view.RelatedPathogen != "VIBRIO" {
		t.Fatalf("expected first related pathogen only, got %q", view.RelatedPathogen)
	}
	if view.Notifiable != "true" {
		t.Fatalf("expected notifiable true, got %q", view.Notifiable)
	}
	if view.Description != "Acute diarrhoeal infection" {
		t.Fatalf("description lost: %q", view.Description)
	}
}

func TestFalseBooleanSurvives(t *testing.T) {
	reg := metadata.DefaultRegistry()
	notifiable := false
	form := models.DiseaseCodeForm{Code: "X", Name: "X", Notifiable: &notifiable}

	opt := FromForm(form, 1, reg)
	view := ToView(opt, reg, stubVocab{})

	if view.Notifiable != "false" {
		t.Fatalf("false must round-trip as a value, got %q", view.Notifiable)
	}
}

func TestEmptyOptionalsAreOmitted(t *testing.T) {
	reg := metadata.DefaultRegistry()
	opt := FromForm(models.DiseaseCodeForm{Code: "X", Name: "X"}, 1, reg)

	if len(opt.AttributeValues) != 0 {
		t.Fatalf("empty optionals must not be written, got %+v", opt.AttributeValues)
	}

	view := ToView(opt, reg, stubVocab{})
	if view.ICDCode != "" || view.Category != "" || view.Notifiable != "" {
		t.Fatalf("expected blank optionals, got %+v", view)
	}
}

func TestUnresolvableCodeYieldsEmptyName(t *testing.T) {
	reg := metadata.DefaultRegistry()
	form := models.DiseaseCodeForm{Code: "X", Name: "X", Category: "UNKNOWN"}

	view := ToView(FromForm(form, 1, reg), reg, stubVocab{})
	if view.Category != "UNKNOWN" {
		t.Fatalf("raw code lost: %q", view.Category)
	}
	if view.CategoryName != "" {
		t.Fatalf("expected empty display name, got %q", view.CategoryName)
	}
}
