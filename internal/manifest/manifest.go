// Package manifest reads YAML batch descriptions for the pdf-batch CLI.
//
//	operation: fill
//	continue_on_fail: true
//	configuration:
//	  - {key: name, value: Ada, type: textfield}
//	items:
//	  - file: forms/a.pdf
//	    output: out/a.pdf
//	    json: {id: 1}
//
// A configuration may be written as YAML or as a JSON string; item-level
// configuration overrides the batch one.
package manifest

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-forms/internal/pipeline"
)

// Manifest is one batch
type Manifest struct {
	Operation      string  `yaml:"operation"`
	ContinueOnFail *bool   `yaml:"continue_on_fail"`
	MaxPDFSizeMB   float64 `yaml:"max_pdf_size"`
	Property       string  `yaml:"property"`
	PropertyOut    string  `yaml:"property_out"`
	Configuration  any     `yaml:"configuration"`
	Entries        []Entry `yaml:"items"`
}

// Entry is one input document
type Entry struct {
	File          string         `yaml:"file"`
	Output        string         `yaml:"output"`
	JSON          map[string]any `yaml:"json"`
	Configuration any            `yaml:"configuration"`
}

// Load reads and checks a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes manifest YAML
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if _, err := pipeline.ParseOperation(m.Operation); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	for i, e := range m.Entries {
		if e.File == "" {
			return fmt.Errorf("invalid manifest: item %d has no file", i)
		}
	}
	return nil
}

// Op returns the parsed operation
func (m *Manifest) Op() pipeline.Operation {
	op, _ := pipeline.ParseOperation(m.Operation)
	return op
}

// Defaults returns batch-wide runner parameters
func (m *Manifest) Defaults() (map[string]any, error) {
	defaults := map[string]any{}
	if m.Property != "" {
		defaults[pipeline.ParamDataPropertyName] = m.Property
	}
	if m.PropertyOut != "" {
		defaults[pipeline.ParamDataPropertyNameOut] = m.PropertyOut
	}
	if m.MaxPDFSizeMB != 0 {
		defaults[pipeline.ParamMaxPDFSize] = m.MaxPDFSizeMB
	}
	if m.Configuration != nil {
		text, err := ConfigurationJSON(m.Configuration)
		if err != nil {
			return nil, err
		}
		defaults[pipeline.ParamConfigurationJSON] = text
	}
	return defaults, nil
}

// Items turns entries into pipeline items. Files are resolved through v and
// read later by the host; only their size is taken here.
func (m *Manifest) Items(v *security.PathValidator) ([]pipeline.Item, error) {
	property := m.Property
	if property == "" {
		property = pipeline.DefaultPropertyName
	}

	items := make([]pipeline.Item, 0, len(m.Entries))
	for i, e := range m.Entries {
		item, err := ItemForFile(v, property, e.File)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if e.JSON != nil {
			item.JSON = e.JSON
		}
		if e.Configuration != nil {
			text, err := ConfigurationJSON(e.Configuration)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			item.Parameters = map[string]any{pipeline.ParamConfigurationJSON: text}
		}
		items = append(items, item)
	}
	return items, nil
}

// ItemForFile describes a file as an item with one binary property
func ItemForFile(v *security.PathValidator, property, file string) (pipeline.Item, error) {
	resolved, err := v.Resolve(file)
	if err != nil {
		return pipeline.Item{}, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return pipeline.Item{}, err
	}

	return pipeline.Item{
		JSON: map[string]any{"file": file},
		Binary: map[string]*pipeline.Binary{
			property: {
				Path:     resolved,
				MimeType: MimeType(resolved),
				FileName: filepath.Base(resolved),
				Size:     info.Size(),
			},
		},
	}, nil
}

// MimeType guesses a media type from the file extension
func MimeType(path string) string {
	ext := filepath.Ext(path)
	if ext == ".pdf" || ext == ".PDF" {
		return pipeline.PDFMimeType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ConfigurationJSON renders a configuration value as JSON text. Strings are
// passed through untouched so their parse errors surface unchanged.
func ConfigurationJSON(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("invalid configuration: %w", err)
	}
	return string(data), nil
}

// Outputs lists the requested output path of every item, empty if unset
func (m *Manifest) Outputs() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Output
	}
	return out
}
