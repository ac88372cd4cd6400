package pathogen

import (
	"github.com/epiwatch/surveillance/pkg/attrmap"
	"github.com/epiwatch/surveillance/pkg/common/models"
	"github.com/epiwatch/surveillance/pkg/metadata"
)

type vocab interface {
	NameByCode(optionSetID, code string) string
}

func ToView(opt models.Option, reg metadata.Registry, names vocab) models.PathogenView {
	view := models.PathogenView{
		ID:        opt.ID,
		Code:      opt.Code,
		Name:      opt.Name,
		SortOrder: opt.SortOrder,
	}

	attrs := opt.AttributeValues
	if v, ok := attrmap.Value(attrs, reg.Attributes.PathogenType); ok {
		view.PathogenType = v
		view.PathogenTypeName = names.NameByCode(reg.OptionSets.PathogenType, v)
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.BiosafetyLevel); ok {
		view.BiosafetyLevel = v
		view.BiosafetyLevelName = names.NameByCode(reg.OptionSets.BiosafetyLevel, v)
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Taxonomy); ok {
		view.Taxonomy = v
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Zoonotic); ok {
		view.Zoonotic = v
	}
	if v, ok := attrmap.Value(attrs, reg.Attributes.Description); ok {
		view.Description = v
	}
	return view
}

func FromForm(form models.PathogenForm, sortOrder int, reg metadata.Registry) models.Option {
	opt := models.Option{
		Code:      form.Code,
		Name:      form.Name,
		SortOrder: sortOrder,
		OptionSet: &models.OptionSetRef{ID: reg.OptionSets.Pathogens},
	}

	var attrs []models.AttributeValue
	if form.PathogenType != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.PathogenType, form.PathogenType)
	}
	if form.BiosafetyLevel != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.BiosafetyLevel, form.BiosafetyLevel)
	}
	if form.Taxonomy != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Taxonomy, form.Taxonomy)
	}
	if form.Zoonotic != nil {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Zoonotic, attrmap.BoolString(*form.Zoonotic))
	}
	if form.Description != "" {
		attrs = attrmap.SetValue(attrs, reg.Attributes.Description, form.Description)
	}

	opt.AttributeValues = attrs
	return opt
}
