package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pmitra96/castleverde/models"
)

// ErrUnreadablePDF wraps every failure to read text out of an uploaded PDF.
var ErrUnreadablePDF = errors.New("unreadable pdf")

// IsPDF reports whether data starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// PDFText returns the plain text of every page.
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}
	if sb.Len() == 0 {
		plain, err := r.GetPlainText()
		if err != nil {
			return "", fmt.Errorf("reading pdf text: %w", err)
		}
		if _, err := io.Copy(&sb, plain); err != nil {
			return "", fmt.Errorf("reading pdf text: %w", err)
		}
	}
	return sb.String(), nil
}

// ParseLabelPDF extracts a nutrition label from a text-based PDF.
func ParseLabelPDF(data []byte) (models.OcrResponse, error) {
	text, err := PDFText(data)
	if err != nil {
		return models.OcrResponse{}, fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}
	return ParseLabelText(text), nil
}
