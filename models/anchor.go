package models

import (
	"strings"
)

// AnchorKey names the nutrient that fixes the scale of the balanced macros.
type AnchorKey string

const (
	AnchorProtein    AnchorKey = "Protein"
	AnchorFat        AnchorKey = "Fat"
	AnchorTotalCarbs AnchorKey = "TotalCarbs"
	AnchorFiber      AnchorKey = "Fiber"
	AnchorSugar      AnchorKey = "Sugar"
)

// AnchorKeys is the canonical nutrient order used by the ratio table.
var AnchorKeys = []AnchorKey{AnchorProtein, AnchorFat, AnchorTotalCarbs, AnchorFiber, AnchorSugar}

// anchorFields maps each anchor to its snake_case wire field name.
var anchorFields = map[AnchorKey]string{
	AnchorProtein:    "protein",
	AnchorFat:        "fat",
	AnchorTotalCarbs: "total_carbs",
	AnchorFiber:      "fiber",
	AnchorSugar:      "sugar",
}

// ParseAnchor accepts the canonical names case-insensitively, plus the
// snake_case wire field names. Anything else is ErrUnknownAnchor.
func ParseAnchor(s string) (AnchorKey, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AnchorKeys {
		if strings.ToLower(string(k)) == normalized || anchorFields[k] == normalized {
			return k, nil
		}
	}
	return "", &UnknownAnchorError{Value: s}
}

// Field returns the wire field name of the anchor nutrient, e.g. "total_carbs".
func (k AnchorKey) Field() string {
	return anchorFields[k]
}

// Valid reports whether k is one of the five anchor keys.
func (k AnchorKey) Valid() bool {
	for _, known := range AnchorKeys {
		if k == known {
			return true
		}
	}
	return false
}

func (k AnchorKey) String() string {
	return string(k)
}
