package document

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageText is the plain text content of one page
type PageText struct {
	Page int    `json:"page"` // zero-based
	Text string `json:"text"`
}

// ExtractText returns the plain text of every page's content stream. Text
// drawn inside form XObjects, such as stamps, is not part of the result.
func ExtractText(data []byte) ([]PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &OpError{Op: "extract_text", Err: fmt.Errorf("failed to open PDF: %w", err)}
	}

	pages := make([]PageText, 0, reader.NumPage())
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			// Keep going; one unreadable page should not hide the rest
			continue
		}
		pages = append(pages, PageText{Page: pageNum - 1, Text: content})
	}
	return pages, nil
}
