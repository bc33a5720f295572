package models

import (
	"math"
)

// MacroNutrients is a macronutrient record in grams.
// NetCarbs is derived from TotalCarbs and Fiber and is never an input.
type MacroNutrients struct {
	Protein    float64  `json:"protein"`
	Fat        float64  `json:"fat"`
	TotalCarbs float64  `json:"total_carbs"`
	Fiber      float64  `json:"fiber"`
	Sugar      float64  `json:"sugar"`
	NetCarbs   *float64 `json:"net_carbs,omitempty"`
}

// NetCarbs returns total carbs minus fiber, floored at zero.
func NetCarbs(m MacroNutrients) float64 {
	return math.Max(0, m.TotalCarbs-m.Fiber)
}

// WithNetCarbs returns a copy carrying the derived net carbs value.
// Any net carbs already present is discarded and recomputed.
func (m MacroNutrients) WithNetCarbs() MacroNutrients {
	net := NetCarbs(m)
	m.NetCarbs = &net
	return m
}

// WithoutNetCarbs returns a copy with net carbs stripped.
func (m MacroNutrients) WithoutNetCarbs() MacroNutrients {
	m.NetCarbs = nil
	return m
}

// Value returns the grams for the given anchor nutrient.
func (m MacroNutrients) Value(anchor AnchorKey) float64 {
	switch anchor {
	case AnchorProtein:
		return m.Protein
	case AnchorFat:
		return m.Fat
	case AnchorTotalCarbs:
		return m.TotalCarbs
	case AnchorFiber:
		return m.Fiber
	case AnchorSugar:
		return m.Sugar
	}
	return 0
}

// fields lists the five input nutrients with their wire names, in canonical order.
func (m MacroNutrients) fields() []struct {
	name  string
	value float64
} {
	return []struct {
		name  string
		value float64
	}{
		{"protein", m.Protein},
		{"fat", m.Fat},
		{"total_carbs", m.TotalCarbs},
		{"fiber", m.Fiber},
		{"sugar", m.Sugar},
	}
}

// Validate reports the first field that is negative or not a finite number.
func (m MacroNutrients) Validate() error {
	for _, f := range m.fields() {
		if err := CheckGrams(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAll reports every invalid field, in canonical order.
func (m MacroNutrients) ValidateAll() []*InvalidMacroValueError {
	var errs []*InvalidMacroValueError
	for _, f := range m.fields() {
		if err := CheckGrams(f.name, f.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// CheckFinite reports the first field that is NaN or infinite, e.g. after an
// overflowing computation. Negative values pass.
func (m MacroNutrients) CheckFinite() *InvalidMacroValueError {
	for _, f := range m.fields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidMacroValueError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// CheckGrams rejects negative, NaN and infinite gram values.
func CheckGrams(field string, v float64) *InvalidMacroValueError {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &InvalidMacroValueError{Field: field, Value: v}
	}
	return nil
}

// Scale multiplies every field by factor. Net carbs is re-derived if it was present.
func (m MacroNutrients) Scale(factor float64) MacroNutrients {
	out := MacroNutrients{
		Protein:    m.Protein * factor,
		Fat:        m.Fat * factor,
		TotalCarbs: m.TotalCarbs * factor,
		Fiber:      m.Fiber * factor,
		Sugar:      m.Sugar * factor,
	}
	if m.NetCarbs != nil {
		return out.WithNetCarbs()
	}
	return out
}
