package models

// Zone is a display band over the predicted spike.
type Zone string

const (
	ZoneLow       Zone = "Low"
	ZoneCaution   Zone = "Caution"
	ZoneDangerous Zone = "Dangerous"
	ZoneRed       Zone = "Red Zone"
)

// Lower bounds of each band; scores below the first bound are Low.
const (
	cautionFrom   = 15.0
	dangerousFrom = 25.0
	redFrom       = 35.0
)

// ZoneFor maps a score to its band. Scores are not clamped, so anything
// above the display range is still Red Zone and anything negative is Low.
func ZoneFor(score float64) Zone {
	switch {
	case score >= redFrom:
		return ZoneRed
	case score >= dangerousFrom:
		return ZoneDangerous
	case score >= cautionFrom:
		return ZoneCaution
	default:
		return ZoneLow
	}
}
