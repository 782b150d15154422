package pipeline

import (
	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// ApplyCreateField draws one descriptor's literal text onto its page
func ApplyCreateField(doc document.Document, d CreateFieldDescriptor) Outcome {
	if d.Value == nil {
		return failed(pdferrors.ErrorTypeMissingField, "Missing required property \"value\" for text on page %d", d.Page)
	}

	if pages := doc.PageCount(); d.Page < 0 || d.Page >= pages {
		return failed(pdferrors.ErrorTypeIndexOutOfRange,
			"Page index %d out of range (document has %d pages)", d.Page, pages)
	}

	style := document.TextStyle{
		X:        d.Options.X,
		Y:        d.Options.Y,
		FontSize: d.Options.Size,
		FontName: d.Options.Font,
		Color:    d.Options.Color,
	}
	if err := doc.AddText(d.Page, *d.Value, style); err != nil {
		return failed(pdferrors.ErrorTypeOperationFailed, "Failed to add text on page %d: %s", d.Page, err.Error())
	}
	return succeeded()
}
