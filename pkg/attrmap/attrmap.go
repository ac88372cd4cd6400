// Package attrmap manipulates the platform's generic attribute-value lists.
package attrmap

import "github.com/epiwatch/surveillance/pkg/common/models"

// SetValue upserts a value for an attribute id: the existing entry is
// replaced in place, otherwise one is appended. An attribute id therefore
// appears at most once in the list.
func SetValue(list []models.AttributeValue, attributeID, value string) []models.AttributeValue {
	for i := range list {
		if list[i].Attribute.ID == attributeID {
			list[i].Value = value
			return list
		}
	}
	return append(list, models.AttributeValue{
		Value:     value,
		Attribute: models.AttributeRef{ID: attributeID},
	})
}

// Value returns the value stored for an attribute id. A boolean false is a
// present value here: it arrives as the string "false", never as absence.
func Value(list []models.AttributeValue, attributeID string) (string, bool) {
	for _, av := range list {
		if av.Attribute.ID == attributeID {
			return av.Value, true
		}
	}
	return "", false
}

// BoolString normalizes a boolean form field for the wire, where every
// attribute value travels as a string.
func BoolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
