package controllers

import (
	"net/http"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

type calculateIndexRequest struct {
	AggregatedInputData *macroInput `json:"aggregated_input_data"`
	AnchorID            *string     `json:"anchor_id"`
}

// CalculateIndex scores the aggregated macros and balances them on the anchor.
// Every field problem is reported before anything is computed.
func (h *Handler) CalculateIndex(w http.ResponseWriter, r *http.Request) {
	if h.Index == nil {
		writeDetail(w, http.StatusServiceUnavailable, "index service not configured")
		return
	}
	var req calculateIndexRequest
	if ve := decodeBody(w, r, &req); ve != nil {
		writeValidation(w, ve)
		return
	}

	ve := &models.ValidationError{}
	var input models.MacroNutrients
	if req.AggregatedInputData == nil {
		ve.Add("Field required", models.ErrTypeMissing, "body", "aggregated_input_data")
	} else {
		input = req.AggregatedInputData.require(ve, "body", "aggregated_input_data")
	}
	anchor := parseAnchorField(ve, req.AnchorID, "body", "anchor_id")
	if ve.Err() != nil {
		writeValidation(w, ve)
		return
	}

	result, err := h.Index.Calculate(input, anchor)
	if err != nil {
		writeEngineError(w, err, "body", "aggregated_input_data")
		return
	}
	logger.Info("Index calculated", "anchor", anchor, "predicted_spike", result.PredictedSpike)
	writeJSON(w, http.StatusOK, result)
}
