// Package pipeline runs batches of PDF documents through one of three
// per-item operations: form fill, text stamping and form field discovery.
package pipeline

import (
	"fmt"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

// PDFMimeType is the only accepted input media type
const PDFMimeType = "application/pdf"

// Defaults for node parameters
const (
	DefaultPropertyName = "data"
	DefaultMaxPDFSizeMB = 10
)

// Parameter names queried per item from the Host
const (
	ParamDataPropertyName    = "dataPropertyName"
	ParamDataPropertyNameOut = "dataPropertyNameOut"
	ParamConfigurationJSON   = "configurationJson"
	ParamMaxPDFSize          = "maxPdfSize"
)

// Operation selects what the runner does with each item
type Operation int

const (
	OperationFill Operation = iota
	OperationCreateField
	OperationGetFormFields
)

func (o Operation) String() string {
	switch o {
	case OperationFill:
		return "fill"
	case OperationCreateField:
		return "create_field"
	case OperationGetFormFields:
		return "get_form_fields"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// ParseOperation maps an operation name to an Operation
func ParseOperation(name string) (Operation, error) {
	switch name {
	case "fill":
		return OperationFill, nil
	case "create_field", "create-field", "stamp":
		return OperationCreateField, nil
	case "get_form_fields", "fields":
		return OperationGetFormFields, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", name)
	}
}

// Binary is one named binary payload of an item. Size is declared by the
// caller and may be stale; the fetched length is checked independently.
type Binary struct {
	Data     []byte `json:"data,omitempty"`
	Path     string `json:"path,omitempty"`
	MimeType string `json:"mimeType"`
	FileName string `json:"fileName,omitempty"`
	Size     int64  `json:"size"`
}

// Item is one unit of work
type Item struct {
	JSON       map[string]any     `json:"json,omitempty"`
	Binary     map[string]*Binary `json:"binary,omitempty"`
	Parameters map[string]any     `json:"parameters,omitempty"`
}

// Result is the output record for one input item. PairedItem is the index
// of the input item it was derived from.
type Result struct {
	JSON       map[string]any     `json:"json"`
	Binary     map[string]*Binary `json:"binary,omitempty"`
	PairedItem int                `json:"pairedItem"`
}

// Error returns the isolated failure message, if any
func (r Result) Error() (string, bool) {
	msg, ok := r.JSON["error"].(string)
	return msg, ok
}

// Outcome reports an expected per-operation failure without raising it.
// Reason classifies a failure for the runner's error taxonomy.
type Outcome struct {
	Success      bool
	ErrorMessage string
	Reason       pdferrors.ErrorType
}

func succeeded() Outcome {
	return Outcome{Success: true}
}

func failed(reason pdferrors.ErrorType, format string, args ...any) Outcome {
	return Outcome{ErrorMessage: fmt.Sprintf(format, args...), Reason: reason}
}
