// Package document exposes the small slice of PDF capability the batch
// pipeline needs: load, save, page count, form field access and page text
// stamping. The pdfcpu implementation lives alongside the interfaces.
package document

// Kind is the normalized kind of an interactive form field
type Kind string

const (
	KindTextField  Kind = "textfield"
	KindCheckBox   Kind = "checkbox"
	KindDropdown   Kind = "dropdown"
	KindOptionList Kind = "optionlist"
	KindRadioGroup Kind = "radiogroup"
	KindButton     Kind = "button"
	KindSignature  Kind = "signature"
	KindUnknown    Kind = "unknown"
)

// Loader parses raw PDF bytes into a Document
type Loader interface {
	Load(data []byte) (Document, error)
}

// Document is a loaded, mutable PDF. A Document is owned by exactly one
// caller at a time and must not be shared between batch items.
type Document interface {
	// PageCount returns the number of pages
	PageCount() int
	// Form returns the interactive form; documents without one yield an empty form
	Form() (Form, error)
	// AddText draws text on the zero-based page at absolute coordinates
	AddText(pageIndex int, text string, style TextStyle) error
	// Save serializes the document, including every mutation made so far
	Save() ([]byte, error)
}

// Form gives access to a document's interactive fields
type Form interface {
	Fields() []Field
	Field(name string) (Field, bool)
}

// Field is one terminal interactive field
type Field interface {
	Name() string
	Kind() Kind
	// Value returns the current value as text: the text of a text field, the
	// selected option of a choice or radio field, the state name of a checkbox
	Value() string
	// Options returns the selectable options of choice and radio fields
	Options() []string
	SetText(text string) error
	SetChecked(checked bool) error
	Checked() bool
	Select(option string) error
}

// TextStyle controls how stamped text is drawn
type TextStyle struct {
	X        float64 // points from the left page edge
	Y        float64 // points from the bottom page edge
	FontSize float64
	FontName string
	Color    string // #RRGGBB
}

// Default text stamping style
const (
	DefaultFontName = "Helvetica"
	DefaultFontSize = 12
	DefaultColor    = "#000000"
)
