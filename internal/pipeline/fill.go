package pipeline

import (
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// ApplyFill applies one fill descriptor to a form. It never returns an
// error; failures are reported through the Outcome so the caller decides
// whether to stop.
func ApplyFill(form document.Form, d FillDescriptor) Outcome {
	switch d.Type {
	case FieldTypeTextField:
		field, out := lookup(form, d.Key, document.KindTextField)
		if field == nil {
			return out
		}
		if err := field.SetText(d.Value); err != nil {
			return failed(pdferrors.ErrorTypeOperationFailed, "%s", err.Error())
		}
		return succeeded()

	case FieldTypeCheckBox:
		field, out := lookup(form, d.Key, document.KindCheckBox)
		if field == nil {
			return out
		}
		if err := field.SetChecked(d.Value == checkboxChecked); err != nil {
			return failed(pdferrors.ErrorTypeOperationFailed, "%s", err.Error())
		}
		return succeeded()

	case FieldTypeDropdown:
		return selectOption(form, d, document.KindDropdown)

	case FieldTypeRadioGroup:
		return selectOption(form, d, document.KindRadioGroup)

	default:
		return failed(pdferrors.ErrorTypeUnknownFieldType, "Invalid field type: %s", d.Type)
	}
}

func selectOption(form document.Form, d FillDescriptor, kind document.Kind) Outcome {
	field, out := lookup(form, d.Key, kind)
	if field == nil {
		return out
	}
	if !hasOption(field.Options(), d.Value) {
		return failed(pdferrors.ErrorTypeOptionNotFound, "Option %q not found in field %q", d.Value, d.Key)
	}
	if err := field.Select(d.Value); err != nil {
		return failed(pdferrors.ErrorTypeOperationFailed, "%s", err.Error())
	}
	return succeeded()
}

// lookup finds a field and checks its kind
func lookup(form document.Form, name string, kind document.Kind) (document.Field, Outcome) {
	field, ok := form.Field(name)
	if !ok {
		return nil, failed(pdferrors.ErrorTypeFieldNotFound, "No field named %q", name)
	}
	if field.Kind() != kind {
		return nil, failed(pdferrors.ErrorTypeFieldMismatch, "Field %q is a %s, not a %s", name, field.Kind(), kind)
	}
	return field, succeeded()
}

func hasOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
