package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pmitra96/castleverde/extractor"
	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// ProcessLabel reads the multipart "image" field and returns the detected
// label rows. Undetected rows are null.
func (h *Handler) ProcessLabel(w http.ResponseWriter, r *http.Request) {
	logger.Info("Received label request")
	if h.Labels == nil {
		writeDetail(w, http.StatusServiceUnavailable, extractor.ErrOCRNotConfigured.Error())
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB limit
		ve := &models.ValidationError{}
		ve.Add("Expected a multipart form", "multipart_invalid", "body")
		writeValidation(w, ve)
		return
	}
	file, fh, err := r.FormFile("image")
	if err != nil {
		ve := &models.ValidationError{}
		ve.Add("Field required", models.ErrTypeMissing, "body", "image")
		writeValidation(w, ve)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	result, err := h.Labels.Process(r.Context(), fh.Filename, data)
	switch {
	case err == nil:
	case errors.Is(err, extractor.ErrOCRNotConfigured):
		writeDetail(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, extractor.ErrUnreadablePDF):
		ve := &models.ValidationError{}
		ve.Add(err.Error(), "pdf_invalid", "body", "image")
		writeValidation(w, ve)
		return
	default:
		logger.Error("Label extraction failed", "file", fh.Filename, "error", err)
		writeDetail(w, http.StatusBadGateway, "Failed to extract label: "+err.Error())
		return
	}

	logger.Info("Label extraction completed", "file", fh.Filename, "missing", result.Partial().Missing())
	writeJSON(w, http.StatusOK, result)
}
