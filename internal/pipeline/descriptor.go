package pipeline

import (
	"encoding/json"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// FieldType tags a fill descriptor. Values outside the declared constants
// are carried through parsing and rejected by ApplyFill.
type FieldType string

const (
	FieldTypeTextField  FieldType = "textfield"
	FieldTypeCheckBox   FieldType = "checkbox"
	FieldTypeDropdown   FieldType = "dropdown"
	FieldTypeRadioGroup FieldType = "radiogroup"
)

// checkboxChecked is the only value that checks a checkbox
const checkboxChecked = "true"

// FillDescriptor sets one form field
type FillDescriptor struct {
	Key   string    `json:"key"`
	Value string    `json:"value"`
	Type  FieldType `json:"type"`
}

// CreateFieldDescriptor stamps one piece of text onto a page. Value is nil
// when the configuration omits it.
type CreateFieldDescriptor struct {
	Value   *string     `json:"value,omitempty"`
	Page    int         `json:"page"`
	Options TextOptions `json:"options"`
}

// TextOptions positions stamped text in PDF points from the lower-left corner
type TextOptions struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size,omitempty"`
	Color string  `json:"color,omitempty"`
	Font  string  `json:"font,omitempty"`
}

// UnmarshalJSON accepts the legacy "text" key as an alias of "value"
func (d *CreateFieldDescriptor) UnmarshalJSON(data []byte) error {
	type plain CreateFieldDescriptor
	var aux struct {
		plain
		Text *string `json:"text,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = CreateFieldDescriptor(aux.plain)
	if d.Value == nil {
		d.Value = aux.Text
	}
	return nil
}

// ParseFillConfig parses a fill configuration. Descriptors are returned in
// configuration order without semantic checks.
func ParseFillConfig(text string) ([]FillDescriptor, error) {
	return parseConfig[FillDescriptor](text)
}

// ParseCreateFieldConfig parses a create-field configuration
func ParseCreateFieldConfig(text string) ([]CreateFieldDescriptor, error) {
	return parseConfig[CreateFieldDescriptor](text)
}

// parseConfig decodes a JSON array. The decoder's diagnostic is kept
// verbatim as the cause so syntax errors can be located. Empty text and
// null are not arrays.
func parseConfig[T any](text string) ([]T, error) {
	var descriptors []T
	if err := json.Unmarshal([]byte(text), &descriptors); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedConfig, "Invalid configuration JSON", err)
	}
	if descriptors == nil {
		return nil, pdferrors.New(pdferrors.ErrorTypeMalformedConfig, "Invalid configuration JSON: expected an array, got null")
	}
	return descriptors, nil
}
