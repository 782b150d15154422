package pipeline

import (
	"fmt"
	"strconv"

	pdferrors "github.com/a3tai/mcp-pdf-forms/internal/pdf/errors"
)

const bytesPerMB = 1024 * 1024

// MaxSizeBytes converts a megabyte limit to bytes. Non-positive limits fall
// back to DefaultMaxPDFSizeMB.
func MaxSizeBytes(maxSizeMB float64) int64 {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxPDFSizeMB
	}
	return int64(maxSizeMB * bytesPerMB)
}

// ParseMaxSizeMB reads a max size parameter of any numeric or string form
func ParseMaxSizeMB(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return DefaultMaxPDFSizeMB
}

// ValidateDeclared checks the caller-declared metadata of a payload before
// any bytes are fetched.
func ValidateDeclared(property string, b *Binary, maxSizeMB float64) error {
	if b == nil {
		return pdferrors.Newf(pdferrors.ErrorTypeMissingBinary,
			"No binary data found on property %q", property).WithProperty(property)
	}

	if b.MimeType != PDFMimeType {
		return pdferrors.Newf(pdferrors.ErrorTypeWrongType,
			"Input (on binary property %q) should be a PDF file, was %s instead", property, b.MimeType).
			WithProperty(property)
	}

	if limit := MaxSizeBytes(maxSizeMB); b.Size > limit {
		return sizeExceeded(property, limit)
	}
	return nil
}

// ValidateFetched re-checks the size limit against the actual byte length
func ValidateFetched(property string, data []byte, maxSizeMB float64) error {
	if limit := MaxSizeBytes(maxSizeMB); int64(len(data)) > limit {
		return sizeExceeded(property, limit)
	}
	return nil
}

func sizeExceeded(property string, limit int64) error {
	return pdferrors.New(pdferrors.ErrorTypeSizeExceeded,
		fmt.Sprintf("Input (on binary property %q) exceeds maximum allowed size of %d bytes", property, limit)).
		WithProperty(property)
}
