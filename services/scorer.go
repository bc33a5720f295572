package services

import (
	"math"

	"github.com/pmitra96/castleverde/models"
)

// GSP coefficients in score units per gram. Carbohydrate and sugar drive the
// spike; fiber, protein and fat blunt it.
const (
	totalCarbsCoefficient = 0.35
	sugarCoefficient      = 0.55
	fiberCoefficient      = 0.80
	proteinCoefficient    = 0.12
	fatCoefficient        = 0.08
)

// Score returns the predicted glycemic spike for a macro record.
// With includeFiberEffect false the fiber field has no influence on the result.
// The score is neither clamped nor rounded, but a non-finite score is an error.
func Score(m models.MacroNutrients, includeFiberEffect bool) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	carbDriven := totalCarbsCoefficient*m.TotalCarbs + sugarCoefficient*m.Sugar
	if includeFiberEffect {
		carbDriven -= fiberCoefficient * m.Fiber
	}
	score := carbDriven - proteinCoefficient*m.Protein - fatCoefficient*m.Fat
	if err := checkScore(score); err != nil {
		return 0, err
	}
	return score, nil
}

func checkScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return &models.InvalidMacroValueError{Value: score}
	}
	return nil
}
