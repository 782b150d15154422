package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-forms/internal/pipeline"
)

const sample = `
operation: fill
continue_on_fail: true
max_pdf_size: 2
property_out: filled
configuration:
  - {key: name, value: Ada, type: textfield}
items:
  - file: a.pdf
    output: out/a.pdf
    json: {id: 1}
  - file: b.pdf
    configuration: '[{"key":"agree","value":"true","type":"checkbox"}]'
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, pipeline.OperationFill, m.Op())
	require.NotNil(t, m.ContinueOnFail)
	assert.True(t, *m.ContinueOnFail)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, "a.pdf", m.Entries[0].File)
	assert.Equal(t, map[string]any{"id": 1}, m.Entries[0].JSON)
	assert.Equal(t, []string{"out/a.pdf", ""}, m.Outputs())

	defaults, err := m.Defaults()
	require.NoError(t, err)
	assert.Equal(t, 2.0, defaults[pipeline.ParamMaxPDFSize])
	assert.Equal(t, "filled", defaults[pipeline.ParamDataPropertyNameOut])
	assert.NotContains(t, defaults, pipeline.ParamDataPropertyName)

	var config []map[string]any
	require.NoError(t, json.Unmarshal([]byte(defaults[pipeline.ParamConfigurationJSON].(string)), &config))
	assert.Equal(t, []map[string]any{{"key": "name", "value": "Ada", "type": "textfield"}}, config)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "operation: [fill"},
		{"unknown operation", "operation: merge"},
		{"item without file", "operation: fields\nitems:\n  - output: x.pdf\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid manifest")
		})
	}
}

func TestManifest_Items(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-bb"), 0o600))
	v, err := security.NewPathValidator(dir)
	require.NoError(t, err)

	m, err := Parse([]byte(sample))
	require.NoError(t, err)
	items, err := m.Items(v)
	require.NoError(t, err)
	require.Len(t, items, 2)

	a := items[0].Binary[pipeline.DefaultPropertyName]
	require.NotNil(t, a)
	assert.Equal(t, filepath.Join(v.Root(), "a.pdf"), a.Path)
	assert.Equal(t, pipeline.PDFMimeType, a.MimeType)
	assert.Equal(t, "a.pdf", a.FileName)
	assert.Equal(t, int64(6), a.Size)
	assert.Equal(t, 1, items[0].JSON["id"])
	assert.Nil(t, items[0].Parameters)

	assert.Equal(t, "b.pdf", items[1].JSON["file"])
	assert.Equal(t, `[{"key":"agree","value":"true","type":"checkbox"}]`,
		items[1].Parameters[pipeline.ParamConfigurationJSON])
}

func TestManifest_ItemsMissingFile(t *testing.T) {
	v, err := security.NewPathValidator(t.TempDir())
	require.NoError(t, err)

	m, err := Parse([]byte("operation: fields\nitems:\n  - file: absent.pdf\n"))
	require.NoError(t, err)
	_, err = m.Items(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 0")
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", MimeType("x.pdf"))
	assert.Equal(t, "application/pdf", MimeType("X.PDF"))
	assert.Equal(t, "image/png", MimeType("x.png"))
	assert.Equal(t, "application/octet-stream", MimeType("x.unknownext"))
}

func TestConfigurationJSON(t *testing.T) {
	got, err := ConfigurationJSON("{invalidJson:}")
	require.NoError(t, err)
	assert.Equal(t, "{invalidJson:}", got, "strings pass through")

	got, err = ConfigurationJSON([]any{map[string]any{"page": 0}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"page":0}]`, got)
}
