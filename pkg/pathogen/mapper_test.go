package pathogen

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
	zoonotic := true
	form := models.PathogenForm{
		Code:           "VIBRIO",
		Name:           "Vibrio cholerae",
		PathogenType:   "BACTERIA",
		BiosafetyLevel: "BSL2",
		Taxonomy:       "Vibrionaceae",
		Zoonotic:       &zoonotic,
		Description:    "Gram-negative bacterium",
	}

	opt := FromForm(form, 3, reg)
	if opt.OptionSet == nil || opt.OptionSet.ID != reg.OptionSets.Pathogens {
		t.Fatalf("option not bound to the pathogen set: %+v", opt.OptionSet)
	}

	names := stubVocab{
		reg.OptionSets.PathogenType + "/BACTERIA":  "Bacteria",
		reg.OptionSets.BiosafetyLevel + "/BSL2":    "Biosafety level 2",
	}
	view := ToView(opt, reg, names)

	if view.Code != "VIBRIO" || view.Name != "Vibrio cholerae" || view.SortOrder != 3 {
		t.Fatalf("identity fields lost: %+v", view)
	}
	if view.PathogenType != "BACTERIA" || view.PathogenTypeName != "Bacteria" {
		t.Fatalf("pathogen type not resolved: %q %q", view.PathogenType, view.PathogenTypeName)
	}
	if view.BiosafetyLevel != "BSL2" || view.BiosafetyLevelName != "Biosafety level 2" {
		t.Fatalf("biosafety level not resolved: %q %q", view.BiosafetyLevel, view.BiosafetyLevelName)
	}
	if view.Taxonomy != "Vibrionaceae" || view.Zoonotic != "true" {
		t.Fatalf("attributes lost: %+v", view)
	}
}

func TestFalseZoonoticSurvives(t *testing.T) {
	reg := metadata.DefaultRegistry()
	zoonotic := false
	form := models.PathogenForm{Code: "X", Name: "X", Zoonotic: &zoonotic}

	view := ToView(FromForm(form, 1, reg), reg, stubVocab{})
	if view.Zoonotic != "false" {
		t.Fatalf("false must round-trip as a value, got %q", view.Zoonotic)
	}
}

func TestEmptyOptionalsAreOmitted(t *testing.T) {
	reg := metadata.DefaultRegistry()
	opt := FromForm(models.PathogenForm{Code: "X", Name: "X"}, 1, reg)
	if len(opt.AttributeValues) != 0 {
		t.Fatalf("empty optionals must not be written, got %+v", opt.AttributeValues)
	}
}
