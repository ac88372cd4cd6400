package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.OptionSets.DiseaseCodes == "" || reg.Attributes.ICDCode == "" {
		t.Fatalf("defaults incomplete: %+v", reg)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	content := []byte("optionSets:\n  diseaseCodes: CustomSet001\nalertFields:\n  CustomDE00001: title\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.OptionSets.DiseaseCodes != "CustomSet001" {
		t.Fatalf("override lost: %q", reg.OptionSets.DiseaseCodes)
	}
	if reg.OptionSets.Pathogens != DefaultRegistry().OptionSets.Pathogens {
		t.Fatalf("unset fields must keep defaults, got %q", reg.OptionSets.Pathogens)
	}
	if reg.AlertField("CustomDE00001") != "title" {
		t.Fatalf("alert field override lost")
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if reg.OptionSets.DiseaseCodes != DefaultRegistry().OptionSets.DiseaseCodes {
		t.Fatalf("expected defaults alongside the error, got %+v", reg)
	}
}

func TestLoadRejectsBlankedRequiredID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.yaml")
	content := []byte("optionSets:\n  riskLevel: \"\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for blanked option-set id")
	}
}

func TestRequiredOptionSetsOrder(t *testing.T) {
	reg := DefaultRegistry()
	ids := reg.RequiredOptionSets()
	if len(ids) != 6 {
		t.Fatalf("expected 6 required sets, got %d", len(ids))
	}
	if ids[0] != reg.OptionSets.DiseaseCodes || ids[1] != reg.OptionSets.Pathogens {
		t.Fatalf("priming order changed: %v", ids)
	}
}

func TestAlertFieldUnknownID(t *testing.T) {
	if got := DefaultRegistry().AlertField("nope"); got != "" {
		t.Fatalf("expected empty field for unknown id, got %q", got)
	}
}
