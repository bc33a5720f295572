package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

type foodLookupRequest struct {
	FoodName *string `json:"food_name"`
}

// FoodLookup resolves a free-text food name to per-100 g macros. Fields no
// source could supply are null.
func (h *Handler) FoodLookup(w http.ResponseWriter, r *http.Request) {
	var req foodLookupRequest
	if ve := decodeBody(w, r, &req); ve != nil {
		writeValidation(w, ve)
		return
	}
	if req.FoodName == nil || strings.TrimSpace(*req.FoodName) == "" {
		ve := &models.ValidationError{}
		ve.Add("Field required", models.ErrTypeMissing, "body", "food_name")
		writeValidation(w, ve)
		return
	}
	if h.Nutrition == nil {
		writeDetail(w, http.StatusServiceUnavailable, "food lookup not configured")
		return
	}

	macros, source, err := h.Nutrition.Lookup(r.Context(), *req.FoodName)
	if err != nil {
		if errors.Is(err, services.ErrNoNutritionData) {
			writeDetail(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("Food lookup failed", "food_name", *req.FoodName, "error", err)
		writeDetail(w, http.StatusBadGateway, "Failed to look up food: "+err.Error())
		return
	}

	logger.Info("Food lookup completed", "food_name", *req.FoodName, "source", source)
	w.Header().Set("X-Lookup-Source", source)
	writeJSON(w, http.StatusOK, models.ExtractedMacrosResponse(macros))
}
