package pipeline

import (
	"errors"
	"fmt"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
)

type fakeField struct {
	name    string
	kind    document.Kind
	value   string
	options []string
	checked bool
}

func (f *fakeField) Name() string { return f.name }
func (f *fakeField) Kind() document.Kind { return f.kind }
func (f *fakeField) Value() string { return f.value }
func (f *fakeField) Options() []string { return f.options }
func (f *fakeField) Checked() bool { return f.checked }
func (f *fakeField) SetText(s string) error { f.value = s; return nil }

func (f *fakeField) SetChecked(checked bool) error {
	f.checked = checked
	return nil
}

func (f *fakeField) Select(option string) error {
	for _, o := range f.options {
		if o == option {
			f.value = option
			return nil
		}
	}
	return fmt.Errorf("no option %q", option)
}

type fakeForm struct {
	fields []*fakeField
}

func (f *fakeForm) Fields() []document.Field {
	out := make([]document.Field, len(f.fields))
	for i, field := range f.fields {
		out[i] = field
	}
	return out
}

func (f *fakeForm) Field(name string) (document.Field, bool) {
	for _, field := range f.fields {
		if field.name == name {
			return field, true
		}
	}
	return nil, false
}

type stampedText struct {
	page  int
	text  string
	style document.TextStyle
}

type fakeDocument struct {
	pages   int
	form    *fakeForm
	stamped []stampedText
	saveErr error
}

func (d *fakeDocument) PageCount() int { return d.pages }

func (d *fakeDocument) Form() (document.Form, error) {
	if d.form == nil {
		return &fakeForm{}, nil
	}
	return d.form, nil
}

func (d *fakeDocument) AddText(page int, text string, style document.TextStyle) error {
	d.stamped = append(d.stamped, stampedText{page: page, text: text, style: style})
	return nil
}

func (d *fakeDocument) Save() ([]byte, error) {
	if d.saveErr != nil {
		return nil, d.saveErr
	}
	return []byte("%PDF-saved"), nil
}

// fakeLoader hands out a fresh document per load
type fakeLoader struct {
	newDoc func() *fakeDocument
	loaded []*fakeDocument
	err    error
}

func (l *fakeLoader) Load(data []byte) (document.Document, error) {
	if l.err != nil {
		return nil, l.err
	}
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	doc := l.newDoc()
	l.loaded = append(l.loaded, doc)
	return doc, nil
}

func sampleForm() *fakeForm {
	return &fakeForm{fields: []*fakeField{
		{name: "Field1", kind: document.KindTextField},
		{name: "agree", kind: document.KindCheckBox},
		{name: "color", kind: document.KindDropdown, options: []string{"Red", "Green"}},
		{name: "answer", kind: document.KindRadioGroup, options: []string{"Yes", "No"}},
	}}
}

func pdfItem(json map[string]any) Item {
	data := []byte("%PDF-1.7 fake")
	return Item{
		JSON: json,
		Binary: map[string]*Binary{
			DefaultPropertyName: {Data: data, MimeType: PDFMimeType, FileName: "in.pdf", Size: int64(len(data))},
		},
	}
}
