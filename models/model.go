package models

import (
	"time"
)

// CartItem is one food in a cart. Macros are already scaled by servings.
type CartItem struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Macros MacroNutrients `json:"macros"`
}

// CartTotals is the projection of a cart's items and anchor.
// It holds no state of its own and is rebuilt on every change.
type CartTotals struct {
	Total          MacroNutrients `json:"total"`
	AnchorKey      AnchorKey      `json:"anchor_key"`
	BalancedMacros MacroNutrients `json:"balanced_macros"`
	PredictedSpike float64        `json:"predicted_spike"`
	Zone           Zone           `json:"zone"`
	ItemCount      int            `json:"item_count"`
}

// CalculationResult is the response of the index calculation.
type CalculationResult struct {
	PredictedSpike float64        `json:"predicted_spike"`
	InputData      MacroNutrients `json:"input_data"`
	BalancedMacros MacroNutrients `json:"balanced_macros"`
}

// FoodLookup caches a food-name lookup so repeat queries skip the collaborators.
type FoodLookup struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Query      string    `gorm:"size:255;uniqueIndex;not null" json:"query"` // normalized food name
	Source     string    `gorm:"size:50;not null" json:"source"`             // openfoodfacts, llm
	Protein    *float64  `json:"protein"`
	Fat        *float64  `json:"fat"`
	TotalCarbs *float64  `json:"total_carbs"`
	Fiber      *float64  `json:"fiber"`
	Sugar      *float64  `json:"sugar"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Partial returns the cached record as a presence-aware macro record.
func (f *FoodLookup) Partial() PartialMacros {
	return PartialMacros{
		Protein:    f.Protein,
		Fat:        f.Fat,
		TotalCarbs: f.TotalCarbs,
		Fiber:      f.Fiber,
		Sugar:      f.Sugar,
	}
}
