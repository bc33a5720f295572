package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// ErrOCRNotConfigured is returned when no OCR service URL is set.
var ErrOCRNotConfigured = errors.New("OCR_SERVICE_URL not configured")

// OCRClient forwards label images to the external OCR service.
type OCRClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewOCRClient(baseURL string) *OCRClient {
	return &OCRClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Extract posts the image as multipart field "image" to {BaseURL}/ocr.
func (c *OCRClient) Extract(ctx context.Context, filename string, image []byte) (models.OcrResponse, error) {
	if c == nil || c.BaseURL == "" {
		return models.OcrResponse{}, ErrOCRNotConfigured
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return models.OcrResponse{}, err
	}
	if _, err := part.Write(image); err != nil {
		return models.OcrResponse{}, err
	}
	if err := writer.Close(); err != nil {
		return models.OcrResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ocr", body)
	if err != nil {
		return models.OcrResponse{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.OcrResponse{}, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.OcrResponse{}, fmt.Errorf("ocr service error (status %d): %s", resp.StatusCode, string(msg))
	}

	var result models.OcrResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.OcrResponse{}, fmt.Errorf("decoding ocr response: %w", err)
	}
	logger.Info("OCR completed", "file", filename, "missing", result.Partial().Missing())
	return result, nil
}
