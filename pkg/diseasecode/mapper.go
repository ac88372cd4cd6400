package diseasecode

import (
	"github.com/epiwatch/surveillance/pkg/attrmap"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
)

// vocab resolves option codes to display names from whatever is cached.
type vocab interface {
	NameByCode(optionSetID, code string) string
}

// ToView flattens a disease-code option into the shape the admin screens
// edit. Coded values resolve to display names through the vocabulary cache;
// an unresolvable code yields an empty name, never an error.
func ToView(opt models.Option, reg metadata.Registry, names vocab) models.DiseaseCodeView {
	view := models.DiseaseCodeView{
		ID:        opt.ID,
		Code:      opt.Code,
		Name:      opt.Name,
		SortOrder: opt.SortOrder,
	}

	attrs := opt.AttributeValues
	if v, ok := attrmap.Value(attrs, reg.Attributes.ICDCode); ok {
		view.ICDCode = v
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Category); ok {
		view.Category = v
		view.CategoryName = names.NameByCode(reg.OptionSets.DiseaseCategory, v)
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.RiskLevel); ok {
		view.RiskLevel = v
		view.RiskLevelName = names.NameByCode(reg.OptionSets.RiskLevel, v)
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.RelatedPathogen); ok {
		view.RelatedPathogen = v
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Notifiable); ok {
		// booleans travel as "true"/"false"; false is a value, not absence
		view.Notifiable = v
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Description); ok {
		view.Description = v
	}
	return view
}

// FromForm builds the option payload for a disease-code form. Optional
// fields left empty are omitted rather than written as blanks; code, name,
// sortOrder, and the owning option set are always set.
func FromForm(form models.DiseaseCodeForm, sortOrder int, reg metadata.Registry) models.Option {
	opt := models.Option{
		Code:      form.Code,
		Name:      form.Name,
		SortOrder: sortOrder,
		OptionSet: &models.OptionSetRef{ID: reg.OptionSets.DiseaseCodes},
	}

	var attrs []models.AttributeValue
	if form.ICDCode != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.ICDCode, form.ICDCode)
	}
	if form.Category != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Category, form.Category)
	}
	if form.RiskLevel != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.RiskLevel, form.RiskLevel)
	}
	if len(form.RelatedPathogens) > 0 {
		// The attribute holds a single code, so only the first selection is
		// kept. Multi-valued related pathogens would need a different
		// attribute representation.
		attrs = attrmap.SetValue(attrs, reg.Attributes.RelatedPathogen, form.RelatedPathogens[0])
	}
	if form.Notifiable != nil {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Notifiable, attrmap.BoolString(*form.Notifiable))
	}
	if form.Description != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Description, form.Description)
	}

	opt.AttributeValues = attrs
	return opt
}
