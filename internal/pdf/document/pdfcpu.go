package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// OpError describes a failed pdfcpu operation
type OpError struct {
	Op  string `json:"operation"`
	Err error  `json:"error"`
}

func (e *OpError) Error() string {
	return fmt.Sprintf("pdf %s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// PDFCPULoader loads documents with pdfcpu
type PDFCPULoader struct {
	strict bool
}

// NewPDFCPULoader creates a loader. Relaxed validation is used unless strict
// is set.
func NewPDFCPULoader(strict bool) *PDFCPULoader {
	return &PDFCPULoader{strict: strict}
}

func (l *PDFCPULoader) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if l.strict {
		conf.ValidationMode = model.ValidationStrict
	}
	return conf
}

// Load parses, validates and optimizes the given PDF bytes
func (l *PDFCPULoader) Load(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, &OpError{Op: "load", Err: fmt.Errorf("empty input")}
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), l.configuration())
	if err != nil {
		return nil, &OpError{Op: "load", Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &OpError{Op: "load", Err: fmt.Errorf("failed to ensure page count: %w", err)}
	}

	return &PDFCPUDocument{ctx: ctx}, nil
}

// PDFCPUDocument is a Document backed by a pdfcpu context
type PDFCPUDocument struct {
	ctx  *model.Context
	form *acroForm
}

// PageCount returns the number of pages
func (d *PDFCPUDocument) PageCount() int {
	return d.ctx.PageCount
}

// Form returns the document's AcroForm, parsing it on first use
func (d *PDFCPUDocument) Form() (Form, error) {
	if d.form != nil {
		return d.form, nil
	}

	form, err := readAcroForm(d.ctx)
	if err != nil {
		return nil, &OpError{Op: "form", Err: err}
	}
	d.form = form
	return form, nil
}

// AddText stamps text onto a page as an on-top text watermark with an
// absolute position, scale and no rotation. A line feed or the two-character
// sequence \n starts a new line. Core fonts draw runes outside Latin-1 as
// spaces.
func (d *PDFCPUDocument) AddText(pageIndex int, text string, style TextStyle) error {
	if pageIndex < 0 || pageIndex >= d.ctx.PageCount {
		return &OpError{
			Op:  "add_text",
			Err: fmt.Errorf("page index %d out of range (document has %d pages)", pageIndex, d.ctx.PageCount),
		}
	}
	if err := validateStyle(style); err != nil {
		return &OpError{Op: "add_text", Err: err}
	}

	wm, err := api.TextWatermark(text, watermarkDescription(style), true, false, types.POINTS)
	if err != nil {
		return &OpError{Op: "add_text", Err: fmt.Errorf("invalid text style: %w", err)}
	}

	pages := types.IntSet{pageIndex + 1: true}
	if err := pdfcpu.AddWatermarks(d.ctx, pages, wm); err != nil {
		return &OpError{Op: "add_text", Err: err}
	}
	return nil
}

// Save writes the document with all mutations applied
func (d *PDFCPUDocument) Save() ([]byte, error) {
	if d.form != nil && d.form.dirty {
		d.form.markNeedAppearances()
	}

	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, &OpError{Op: "save", Err: err}
	}
	return buf.Bytes(), nil
}

// coreFonts are the standard Type 1 fonts every PDF reader provides
var coreFonts = map[string]bool{
	"Courier": true, "Courier-Bold": true, "Courier-BoldOblique": true, "Courier-Oblique": true,
	"Helvetica": true, "Helvetica-Bold": true, "Helvetica-BoldOblique": true, "Helvetica-Oblique": true,
	"Times-Roman": true, "Times-Bold": true, "Times-BoldItalic": true, "Times-Italic": true,
	"Symbol": true, "ZapfDingbats": true,
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// validateStyle accepts only core font names and #RRGGBB colors
func validateStyle(style TextStyle) error {
	if style.FontName != "" && !coreFonts[style.FontName] {
		return fmt.Errorf("unsupported font %q", style.FontName)
	}
	if style.Color != "" && !hexColor.MatchString(style.Color) {
		return fmt.Errorf("invalid color %q, expected #RRGGBB", style.Color)
	}
	return nil
}

// watermarkDescription renders a pdfcpu watermark description string
func watermarkDescription(style TextStyle) string {
	fontName := style.FontName
	if fontName == "" {
		fontName = DefaultFontName
	}
	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	color := style.Color
	if color == "" {
		color = DefaultColor
	}

	parts := []string{
		"fontname:" + fontName,
		"points:" + strconv.Itoa(int(fontSize+0.5)),
		"fillcolor:" + color,
		"position:bl",
		"offset:" + formatPoint(style.X) + " " + formatPoint(style.Y),
		"scalefactor:1 abs",
		"rotation:0",
		"opacity:1",
	}
	return strings.Join(parts, ", ")
}

func formatPoint(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
