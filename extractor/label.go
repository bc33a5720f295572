package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmitra96/castleverde/models"
)

const number = `(\d+(?:\.\d+)?)`

// Label rows, most specific pattern first. Amounts are grams.
var (
	proteinPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bprotein\s*:?\s*` + number + `\s*g`),
	}
	fatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btotal\s+fat\s*:?\s*` + number + `\s*g`),
		regexp.MustCompile(`(?im)^\s*fat\s*:?\s*` + number + `\s*g`),
	}
	carbPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btotal\s+carbohydrates?\s*:?\s*` + number + `\s*g`),
		regexp.MustCompile(`(?i)\bcarbohydrates?\s*:?\s*` + number + `\s*g`),
	}
	fiberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdietary\s+fib(?:er|re)\s*:?\s*` + number + `\s*g`),
		regexp.MustCompile(`(?i)\bfib(?:er|re)\s*:?\s*` + number + `\s*g`),
	}
	sugarPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btotal\s+sugars?\s*:?\s*` + number + `\s*g`),
		regexp.MustCompile(`(?im)^\s*sugars?\s*:?\s*` + number + `\s*g`),
	}
	servingsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + number + `\s+servings?\s+per\s+(?:container|package|pack)`),
		regexp.MustCompile(`(?i)servings?\s+per\s+(?:container|package|pack)\s*:?\s*(?:about\s+)?` + number),
	}
)

// ParseLabelText reads a nutrition facts panel from plain text. Rows that
// are not found stay nil.
func ParseLabelText(text string) models.OcrResponse {
	return models.OcrResponse{
		Protein:           firstMatch(text, proteinPatterns),
		TotalFat:          firstMatch(text, fatPatterns),
		TotalCarbohydrate: firstMatch(text, carbPatterns),
		DietaryFiber:      firstMatch(text, fiberPatterns),
		TotalSugars:       firstMatch(text, sugarPatterns),
		Servings:          firstMatch(text, servingsPatterns),
	}
}

func firstMatch(text string, patterns []*regexp.Regexp) *float64 {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(m[1]), 64)
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}
