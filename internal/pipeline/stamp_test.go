package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/pdf/document"
	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

func strPtr(s string) *string { return &s }

func TestApplyCreateField(t *testing.T) {
	doc := &fakeDocument{pages: 2}

	out := ApplyCreateField(doc, CreateFieldDescriptor{
		Value:   strPtr("Approved"),
		Page:    1,
		Options: TextOptions{X: 72, Y: 700, Size: 18, Color: "#ff0000", Font: "Courier"},
	})
	require.True(t, out.Success, out.ErrorMessage)

	require.Len(t, doc.stamped, 1)
	assert.Equal(t, 1, doc.stamped[0].page)
	assert.Equal(t, "Approved", doc.stamped[0].text)
	assert.Equal(t, document.TextStyle{X: 72, Y: 700, FontSize: 18, FontName: "Courier", Color: "#ff0000"}, doc.stamped[0].style)
}

func TestApplyCreateField_PageBounds(t *testing.T) {
	for _, page := range []int{-1, 2, 99} {
		doc := &fakeDocument{pages: 2}
		out := ApplyCreateField(doc, CreateFieldDescriptor{Value: strPtr("x"), Page: page})

		assert.False(t, out.Success)
		assert.Equal(t, pdferrors.ErrorTypeIndexOutOfRange, out.Reason)
		assert.Contains(t, out.ErrorMessage, "out of range")
		assert.Empty(t, doc.stamped)
	}
}

func TestApplyCreateField_MissingValue(t *testing.T) {
	doc := &fakeDocument{pages: 1}
	out := ApplyCreateField(doc, CreateFieldDescriptor{Page: 0})

	assert.False(t, out.Success)
	assert.Equal(t, pdferrors.ErrorTypeMissingField, out.Reason)
	assert.Empty(t, doc.stamped)
}

func TestApplyCreateField_EmptyStringIsValid(t *testing.T) {
	doc := &fakeDocument{pages: 1}
	out := ApplyCreateField(doc, CreateFieldDescriptor{Value: strPtr(""), Page: 0})
	assert.True(t, out.Success)
}
