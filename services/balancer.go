package services

import (
	"github.com/pmitra96/castleverde/models"
)

// ratioWeights is the fixed balance ratio, Protein:Fat:TotalCarbs:Fiber:Sugar = 4:2:3:1:2.
var ratioWeights = map[models.AnchorKey]float64{
	models.AnchorProtein:    4,
	models.AnchorFat:        2,
	models.AnchorTotalCarbs: 3,
	models.AnchorFiber:      1,
	models.AnchorSugar:      2,
}

// RatioWeight returns the ratio table weight for a nutrient.
func RatioWeight(k models.AnchorKey) float64 {
	return ratioWeights[k]
}

// Balance derives the ideal macro breakdown from one anchor nutrient. Every
// nutrient is weight * (anchorValue / weight[anchor]), so the anchor itself
// comes back unchanged. Net carbs is never part of the result. A result that
// overflows is rejected against the anchor field.
func Balance(anchor models.AnchorKey, anchorValue float64) (models.MacroNutrients, error) {
	if !anchor.Valid() {
		return models.MacroNutrients{}, &models.UnknownAnchorError{Value: string(anchor)}
	}
	if err := models.CheckGrams(anchor.Field(), anchorValue); err != nil {
		return models.MacroNutrients{}, err
	}

	k := anchorValue / ratioWeights[anchor]
	balanced := models.MacroNutrients{
		Protein:    ratioWeights[models.AnchorProtein] * k,
		Fat:        ratioWeights[models.AnchorFat] * k,
		TotalCarbs: ratioWeights[models.AnchorTotalCarbs] * k,
		Fiber:      ratioWeights[models.AnchorFiber] * k,
		Sugar:      ratioWeights[models.AnchorSugar] * k,
	}
	if err := checkBalanced(anchor, balanced); err != nil {
		return models.MacroNutrients{}, err
	}
	return balanced, nil
}

func checkBalanced(anchor models.AnchorKey, m models.MacroNutrients) error {
	if bad := m.CheckFinite(); bad != nil {
		return &models.InvalidMacroValueError{Field: anchor.Field(), Value: bad.Value}
	}
	return nil
}
