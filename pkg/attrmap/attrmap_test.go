package attrmap

import (
	"testing"

	"github.com/epiwatch/surveillance/pkg/common/models"
)

func TestSetValueUpserts(t *testing.T) {
	var list []models.AttributeValue
	list = SetValue(list, "attr1", "first")
	list = SetValue(list, "attr2", "other")
	list = SetValue(list, "attr1", "second")

	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}

	count := 0
	for _, av := range list {
		if av.Attribute.ID == "attr1" {
			count++
			if av.Value != "second" {
				t.Fatalf("expected replaced value, got %q", av.Value)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for attr1, got %d", count)
	}
}

func TestValueTreatsFalseAsPresent(t *testing.T) {
	list := SetValue(nil, "flag", BoolString(false))

	v, ok := Value(list, "flag")
	if !ok {
		t.Fatal("expected false value to be present")
	}
	if v != "false" {
		t.Fatalf("expected %q, got %q", "false", v)
	}
}

func TestValueMissing(t *testing.T) {
	list := SetValue(nil, "known", "x")
	if _, ok := Value(list, "unknown"); ok {
		t.Fatal("expected miss for unknown attribute id")
	}
}
