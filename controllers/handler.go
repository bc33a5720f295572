package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

// Handler serves the HTTP routes. Every collaborator is injected; nil
// collaborators make their routes answer 503.
type Handler struct {
	Index     *services.IndexService
	Carts     *services.CartRegistry
	Nutrition *services.NutritionService
	Labels    *services.LabelService
	DB        *gorm.DB
}

// writeJSON encodes v before touching the response, so an encoding failure
// becomes a 500 instead of a success status with no body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"detail":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeDetail writes a plain error in the same envelope as validation errors.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func writeValidation(w http.ResponseWriter, ve *models.ValidationError) {
	logger.Warn("Request validation failed", "error", ve.Error())
	writeJSON(w, http.StatusUnprocessableEntity, ve)
}

// writeEngineError maps engine errors onto status codes. Input problems are
// reported as validation errors rooted at loc.
func writeEngineError(w http.ResponseWriter, err error, loc ...any) {
	if ve := models.AsValidationError(err, loc...); ve != nil {
		writeValidation(w, ve)
		return
	}
	switch {
	case errors.Is(err, models.ErrDuplicateID):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCartNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("Request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}
