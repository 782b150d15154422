// Package pdftest builds small, well-formed PDF files for tests: blank
// pages, page text and AcroForm fields with correct cross-reference offsets.
package pdftest

import (
	"fmt"
	"strconv"
	"strings"
)

type fieldKind int

const (
	textField fieldKind = iota
	checkBox
	dropdown
	radioGroup
)

type fieldSpec struct {
	kind    fieldKind
	name    string
	value   string
	checked bool
	options []string
	page    int
}

type pageSpec struct {
	width, height float64
	text          string
}

// Builder assembles a PDF document
type Builder struct {
	pages  []pageSpec
	fields []fieldSpec
}

// New returns an empty builder
func New() *Builder {
	return &Builder{}
}

// AddPage appends a page of the given size in points
func (b *Builder) AddPage(width, height float64) *Builder {
	b.pages = append(b.pages, pageSpec{width: width, height: height})
	return b
}

// AddTextPage appends a US Letter page whose content stream shows text
func (b *Builder) AddTextPage(text string) *Builder {
	b.pages = append(b.pages, pageSpec{width: 612, height: 792, text: text})
	return b
}

// AddTextField adds a text field on the first page
func (b *Builder) AddTextField(name, value string) *Builder {
	b.fields = append(b.fields, fieldSpec{kind: textField, name: name, value: value})
	return b
}

// AddCheckBox adds a checkbox with on-state "Yes"
func (b *Builder) AddCheckBox(name string, checked bool) *Builder {
	b.fields = append(b.fields, fieldSpec{kind: checkBox, name: name, checked: checked})
	return b
}

// AddDropdown adds a combo box with the given options
func (b *Builder) AddDropdown(name string, options ...string) *Builder {
	b.fields = append(b.fields, fieldSpec{kind: dropdown, name: name, options: options})
	return b
}

// AddRadioGroup adds a radio group with one widget per option. Options are
// used as appearance state names and must be plain PDF name characters.
func (b *Builder) AddRadioGroup(name string, options ...string) *Builder {
	b.fields = append(b.fields, fieldSpec{kind: radioGroup, name: name, options: options})
	return b
}

// objects collects indirect objects; object number = index + 1
type objects struct {
	bodies []string
}

func (o *objects) reserve() int {
	o.bodies = append(o.bodies, "")
	return len(o.bodies)
}

func (o *objects) set(num int, body string) {
	o.bodies[num-1] = body
}

func (o *objects) add(body string) int {
	num := o.reserve()
	o.set(num, body)
	return num
}

func ref(num int) string {
	return strconv.Itoa(num) + " 0 R"
}

func refs(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = ref(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func literal(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return "(" + s + ")"
}

func stream(dict, content string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content)
}

// Bytes renders the document. A builder without pages gets one blank page.
func (b *Builder) Bytes() []byte {
	pages := b.pages
	if len(pages) == 0 {
		pages = []pageSpec{{width: 612, height: 792}}
	}

	var objs objects
	catalog := objs.reserve()
	pagesNum := objs.reserve()
	font := objs.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	appearance := objs.add(stream("/Type /XObject /Subtype /Form /BBox [0 0 12 12]", "0 g 0 0 12 12 re f"))

	pageNums := make([]int, len(pages))
	for i := range pages {
		pageNums[i] = objs.reserve()
	}
	annots := make([][]int, len(pages))

	widgetRect := func(i int) string {
		y := 700 - float64(i)*30
		return fmt.Sprintf("[72 %g 272 %g]", y, y+20)
	}
	onStatesAP := func(on string) string {
		return fmt.Sprintf("<< /N << /%s %s /Off %s >> >>", on, ref(appearance), ref(appearance))
	}

	var fieldNums []int
	for i, f := range b.fields {
		page := pageNums[f.page]
		switch f.kind {
		case textField:
			num := objs.add(fmt.Sprintf(
				"<< /Type /Annot /Subtype /Widget /FT /Tx /T %s /V %s /DA (/Helv 0 Tf 0 g) /Rect %s /P %s /F 4 >>",
				literal(f.name), literal(f.value), widgetRect(i), ref(page)))
			fieldNums = append(fieldNums, num)
			annots[f.page] = append(annots[f.page], num)

		case checkBox:
			state := "Off"
			if f.checked {
				state = "Yes"
			}
			num := objs.add(fmt.Sprintf(
				"<< /Type /Annot /Subtype /Widget /FT /Btn /T %s /V /%s /AS /%s /Rect %s /P %s /F 4 /AP %s >>",
				literal(f.name), state, state, widgetRect(i), ref(page), onStatesAP("Yes")))
			fieldNums = append(fieldNums, num)
			annots[f.page] = append(annots[f.page], num)

		case dropdown:
			opts := make([]string, len(f.options))
			for j, o := range f.options {
				opts[j] = literal(o)
			}
			num := objs.add(fmt.Sprintf(
				"<< /Type /Annot /Subtype /Widget /FT /Ch /Ff 131072 /T %s /Opt [%s] /V () /DA (/Helv 0 Tf 0 g) /Rect %s /P %s /F 4 >>",
				literal(f.name), strings.Join(opts, " "), widgetRect(i), ref(page)))
			fieldNums = append(fieldNums, num)
			annots[f.page] = append(annots[f.page], num)

		case radioGroup:
			parent := objs.reserve()
			kids := make([]int, len(f.options))
			for j, o := range f.options {
				y := 700 - float64(i)*30
				kids[j] = objs.add(fmt.Sprintf(
					"<< /Type /Annot /Subtype /Widget /Parent %s /Rect [%g %g %g %g] /P %s /F 4 /AS /Off /AP %s >>",
					ref(parent), 72+float64(j)*30, y, 84+float64(j)*30, y+12, ref(page), onStatesAP(o)))
				annots[f.page] = append(annots[f.page], kids[j])
			}
			objs.set(parent, fmt.Sprintf("<< /FT /Btn /Ff 49152 /T %s /V /Off /Kids %s >>",
				literal(f.name), refs(kids)))
			fieldNums = append(fieldNums, parent)
		}
	}

	for i, p := range pages {
		content := "q Q"
		if p.text != "" {
			content = "BT\n/F1 12 Tf\n72 720 Td\n" + literal(p.text) + " Tj\nET"
		}
		contents := objs.add(stream("", content))

		body := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 %g %g] /Resources << /Font << /F1 %s >> >> /Contents %s",
			ref(pagesNum), p.width, p.height, ref(font), ref(contents))
		if len(annots[i]) > 0 {
			body += " /Annots " + refs(annots[i])
		}
		objs.set(pageNums[i], body+" >>")
	}

	objs.set(pagesNum, fmt.Sprintf("<< /Type /Pages /Kids %s /Count %d >>", refs(pageNums), len(pageNums)))

	catalogBody := "<< /Type /Catalog /Pages " + ref(pagesNum)
	if len(fieldNums) > 0 {
		acroForm := objs.add(fmt.Sprintf("<< /Fields %s /DR << /Font << /Helv %s >> >> /DA (/Helv 0 Tf 0 g) >>",
			refs(fieldNums), ref(font)))
		catalogBody += " /AcroForm " + ref(acroForm)
	}
	objs.set(catalog, catalogBody+" >>")

	return render(objs.bodies, catalog)
}

func render(bodies []string, root int) []byte {
	var sb strings.Builder
	sb.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(bodies))
	for i, body := range bodies {
		offsets[i] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n", len(bodies)+1)
	sb.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root %s >>\nstartxref\n%d\n%%%%EOF\n", len(bodies)+1, ref(root), xref)

	return []byte(sb.String())
}
