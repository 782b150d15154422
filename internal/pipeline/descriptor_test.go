package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

func TestParseFillConfig(t *testing.T) {
	descriptors, err := ParseFillConfig(`[
		{"key": "Field1", "value": "v", "type": "textfield"},
		{"key": "agree", "value": "true", "type": "checkbox"},
		{"key": "x", "value": "y", "type": "unknownType"}
	]`)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	assert.Equal(t, FillDescriptor{Key: "Field1", Value: "v", Type: FieldTypeTextField}, descriptors[0])
	assert.Equal(t, FieldTypeCheckBox, descriptors[1].Type)
	assert.Equal(t, FieldType("unknownType"), descriptors[2].Type, "unknown tags survive parsing")
}

func TestParseFillConfig_EmptyArray(t *testing.T) {
	descriptors, err := ParseFillConfig("[]")
	require.NoError(t, err)
	assert.NotNil(t, descriptors)
	assert.Empty(t, descriptors)
}

func TestParseConfig_NotAnArray(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"", "unexpected end of JSON input"},
		{"   ", "unexpected end of JSON input"},
		{"null", "expected an array"},
		{" null ", "expected an array"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := ParseFillConfig(tt.text)
			require.Error(t, err)
			assert.Equal(t, pdferrors.ErrorTypeMalformedConfig, pdferrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.want)

			_, err = ParseCreateFieldConfig(tt.text)
			require.Error(t, err)
			assert.Equal(t, pdferrors.ErrorTypeMalformedConfig, pdferrors.TypeOf(err))
		})
	}
}

func TestParseFillConfig_Malformed(t *testing.T) {
	_, err := ParseFillConfig("{invalidJson:}")
	require.Error(t, err)

	assert.Equal(t, pdferrors.ErrorTypeMalformedConfig, pdferrors.TypeOf(err))
	assert.Contains(t, err.Error(), "Invalid configuration JSON")
	assert.Contains(t, err.Error(), "invalid character 'i' looking for beginning of object key string")
}

func TestParseCreateFieldConfig(t *testing.T) {
	descriptors, err := ParseCreateFieldConfig(`[
		{"value": "Approved", "page": 0, "options": {"x": 72, "y": 700, "size": 18, "color": "#ff0000"}},
		{"text": "Legacy", "page": 1, "options": {"x": 10, "y": 20}},
		{"page": 2, "options": {"x": 1, "y": 1}}
	]`)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	require.NotNil(t, descriptors[0].Value)
	assert.Equal(t, "Approved", *descriptors[0].Value)
	assert.Equal(t, TextOptions{X: 72, Y: 700, Size: 18, Color: "#ff0000"}, descriptors[0].Options)

	require.NotNil(t, descriptors[1].Value)
	assert.Equal(t, "Legacy", *descriptors[1].Value)
	assert.Equal(t, 1, descriptors[1].Page)

	assert.Nil(t, descriptors[2].Value)
}

func TestParseCreateFieldConfig_ValueWinsOverText(t *testing.T) {
	descriptors, err := ParseCreateFieldConfig(`[{"value": "new", "text": "old", "page": 0, "options": {"x": 0, "y": 0}}]`)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "new", *descriptors[0].Value)
}

func TestParseCreateFieldConfig_Malformed(t *testing.T) {
	_, err := ParseCreateFieldConfig(`[{"page": "zero"}]`)
	require.Error(t, err)
	assert.Equal(t, pdferrors.ErrorTypeMalformedConfig, pdferrors.TypeOf(err))
}
