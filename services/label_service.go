package services

import (
	"context"

	"github.com/pmitra96/castleverde/extractor"
	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// LabelOCR reads a nutrition label from an image.
type LabelOCR interface {
	Extract(ctx context.Context, filename string, image []byte) (models.OcrResponse, error)
}

// LabelService turns an uploaded label into an OCR result. Text PDFs are
// parsed locally; everything else goes to the OCR collaborator.
type LabelService struct {
	ocr LabelOCR
}

func NewLabelService(ocr LabelOCR) *LabelService {
	return &LabelService{ocr: ocr}
}

// Process returns the detected rows. Undetected rows stay nil.
func (s *LabelService) Process(ctx context.Context, filename string, data []byte) (models.OcrResponse, error) {
	if extractor.IsPDF(data) {
		logger.Info("Parsing PDF label locally", "file", filename)
		return extractor.ParseLabelPDF(data)
	}
	if s.ocr == nil {
		return models.OcrResponse{}, extractor.ErrOCRNotConfigured
	}
	return s.ocr.Extract(ctx, filename, data)
}
