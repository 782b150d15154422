package document

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Field flag bits (PDF 32000-1:2008, 12.7.4)
const (
	flagRadio      = 1 << 15
	flagPushbutton = 1 << 16
	flagCombo      = 1 << 17
)

const offState = "Off"

// acroForm is the parsed AcroForm field tree of one document
type acroForm struct {
	ctx    *model.Context
	dict   types.Dict
	fields []*acroField
	byName map[string]*acroField
	dirty  bool
}

// inherited carries inheritable field attributes down the field tree
type inherited struct {
	ft string
	ff int
}

func readAcroForm(ctx *model.Context) (*acroForm, error) {
	form := &acroForm{ctx: ctx, byName: map[string]*acroField{}}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return form, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return form, nil
	}
	form.dict = acroFormDict

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return form, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for _, fieldObj := range fieldsArray {
		if err := form.collect(fieldObj, "", inherited{}); err != nil {
			return nil, err
		}
	}
	return form, nil
}

// collect walks one node of the field tree. Kids carrying a partial name
// (T) are child fields; kids without one are widget annotations.
func (f *acroForm) collect(obj types.Object, parentName string, inh inherited) error {
	dict, err := f.ctx.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if dict == nil {
		return nil
	}

	name := parentName
	if nameObj, found := dict.Find("T"); found {
		partial, err := f.ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
		if err == nil && partial != "" {
			if parentName != "" {
				name = parentName + "." + partial
			} else {
				name = partial
			}
		}
	}

	if ftObj, found := dict.Find("FT"); found {
		if ft, err := f.ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			inh.ft = string(ft)
		}
	}
	if ffObj, found := dict.Find("Ff"); found {
		if ff, err := f.ctx.DereferenceInteger(ffObj); err == nil && ff != nil {
			inh.ff = int(*ff)
		}
	}

	var childFields, widgets []types.Dict
	var childObjs []types.Object
	if kidsObj, found := dict.Find("Kids"); found {
		kids, err := f.ctx.DereferenceArray(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to dereference Kids of %q: %w", name, err)
		}
		for _, kidObj := range kids {
			kid, err := f.ctx.DereferenceDict(kidObj)
			if err != nil || kid == nil {
				continue
			}
			if _, isField := kid.Find("T"); isField {
				childFields = append(childFields, kid)
				childObjs = append(childObjs, kidObj)
			} else {
				widgets = append(widgets, kid)
			}
		}
	}

	if len(childFields) > 0 {
		for _, childObj := range childObjs {
			if err := f.collect(childObj, name, inh); err != nil {
				return err
			}
		}
		return nil
	}

	if len(widgets) == 0 {
		widgets = []types.Dict{dict}
	}
	if name == "" {
		name = fmt.Sprintf("field_%d", len(f.fields))
	}

	field := &acroField{
		form:    f,
		name:    name,
		kind:    kindOf(inh.ft, inh.ff),
		dict:    dict,
		widgets: widgets,
	}
	f.fields = append(f.fields, field)
	if _, dup := f.byName[name]; !dup {
		f.byName[name] = field
	}
	return nil
}

// kindOf maps the FT entry and field flags to a normalized Kind
func kindOf(ft string, ff int) Kind {
	switch ft {
	case "Tx":
		return KindTextField
	case "Btn":
		if ff&flagRadio != 0 {
			return KindRadioGroup
		}
		if ff&flagPushbutton != 0 {
			return KindButton
		}
		return KindCheckBox
	case "Ch":
		if ff&flagCombo != 0 {
			return KindDropdown
		}
		return KindOptionList
	case "Sig":
		return KindSignature
	default:
		return KindUnknown
	}
}

// Fields returns every terminal field in document order
func (f *acroForm) Fields() []Field {
	fields := make([]Field, 0, len(f.fields))
	for _, field := range f.fields {
		fields = append(fields, field)
	}
	return fields
}

// Field looks up a field by its fully qualified name
func (f *acroForm) Field(name string) (Field, bool) {
	field, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return field, true
}

// markNeedAppearances asks viewers to regenerate widget appearances for
// fields whose values changed without a matching appearance stream.
func (f *acroForm) markNeedAppearances() {
	if f.dict != nil {
		f.dict["NeedAppearances"] = types.Boolean(true)
	}
}

// acroField is a terminal field and its widget annotations
type acroField struct {
	form    *acroForm
	name    string
	kind    Kind
	dict    types.Dict
	widgets []types.Dict
}

func (a *acroField) Name() string { return a.name }

func (a *acroField) Kind() Kind { return a.kind }

// Value returns the V entry rendered as text
func (a *acroField) Value() string {
	obj, found := a.dict.Find("V")
	if !found {
		return ""
	}
	ctx := a.form.ctx
	if name, err := ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(name)
	}
	if s, err := ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	return ""
}

// Options lists choice options (export values) or radio on-states
func (a *acroField) Options() []string {
	switch a.kind {
	case KindDropdown, KindOptionList:
		return a.choiceOptions()
	case KindRadioGroup:
		var options []string
		seen := map[string]bool{}
		for _, w := range a.widgets {
			for _, state := range a.onStates(w) {
				if !seen[state] {
					seen[state] = true
					options = append(options, state)
				}
			}
		}
		return options
	default:
		return nil
	}
}

func (a *acroField) choiceOptions() []string {
	ctx := a.form.ctx
	optObj, found := a.dict.Find("Opt")
	if !found {
		return nil
	}
	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return nil
	}

	var options []string
	for _, opt := range optArray {
		// Options are either text strings or [export display] pairs
		if s, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, s)
			continue
		}
		if pair, err := ctx.DereferenceArray(opt); err == nil && len(pair) >= 1 {
			if s, err := ctx.DereferenceStringOrHexLiteral(pair[0], model.V10, nil); err == nil {
				options = append(options, s)
			}
		}
	}
	return options
}

// onStates returns the non-Off normal appearance state names of a widget
func (a *acroField) onStates(widget types.Dict) []string {
	ctx := a.form.ctx
	apObj, found := widget.Find("AP")
	if !found {
		return nil
	}
	ap, err := ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, found := ap.Find("N")
	if !found {
		return nil
	}
	n, err := ctx.DereferenceDict(nObj)
	if err != nil || n == nil {
		return nil
	}

	var states []string
	for key := range n {
		if key != offState {
			states = append(states, key)
		}
	}
	sort.Strings(states)
	return states
}

// SetText sets the value of a text field
func (a *acroField) SetText(text string) error {
	if a.kind != KindTextField {
		return fmt.Errorf("field %q is a %s, not a %s", a.name, a.kind, KindTextField)
	}

	s, err := types.EscapedUTF16String(text)
	if err != nil {
		return fmt.Errorf("failed to encode value for %q: %w", a.name, err)
	}
	a.dict["V"] = types.StringLiteral(*s)

	// Stale appearances would keep showing the previous value
	for _, w := range a.widgets {
		delete(w, "AP")
	}
	a.form.dirty = true
	return nil
}

// SetChecked toggles a checkbox between its on-state and Off
func (a *acroField) SetChecked(checked bool) error {
	if a.kind != KindCheckBox {
		return fmt.Errorf("field %q is a %s, not a %s", a.name, a.kind, KindCheckBox)
	}

	state := offState
	if checked {
		state = "Yes"
		for _, w := range a.widgets {
			if states := a.onStates(w); len(states) > 0 {
				state = states[0]
				break
			}
		}
	}

	a.dict["V"] = types.Name(state)
	for _, w := range a.widgets {
		w["AS"] = types.Name(state)
	}
	a.form.dirty = true
	return nil
}

// Checked reports whether a checkbox is in an on-state
func (a *acroField) Checked() bool {
	v := a.Value()
	return v != "" && v != offState
}

// Select chooses an option of a dropdown, option list or radio group
func (a *acroField) Select(option string) error {
	switch a.kind {
	case KindDropdown, KindOptionList:
		if !contains(a.choiceOptions(), option) {
			return fmt.Errorf("option %q not found in field %q", option, a.name)
		}
		s, err := types.EscapedUTF16String(option)
		if err != nil {
			return fmt.Errorf("failed to encode option for %q: %w", a.name, err)
		}
		a.dict["V"] = types.StringLiteral(*s)
		for _, w := range a.widgets {
			delete(w, "AP")
		}

	case KindRadioGroup:
		if !contains(a.Options(), option) {
			return fmt.Errorf("option %q not found in field %q", option, a.name)
		}
		a.dict["V"] = types.Name(option)
		for _, w := range a.widgets {
			state := offState
			if contains(a.onStates(w), option) {
				state = option
			}
			w["AS"] = types.Name(state)
		}

	default:
		return fmt.Errorf("field %q is a %s and has no options", a.name, a.kind)
	}

	a.form.dirty = true
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
