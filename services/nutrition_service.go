package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

var (
	// ErrEmptyFoodName is returned for a blank lookup query.
	ErrEmptyFoodName = errors.New("food name is required")
	// ErrNoNutritionData is returned when no source produced any macro.
	ErrNoNutritionData = errors.New("no nutrition data found")
)

// Lookup sources.
const (
	SourceCache         = "cache"
	SourceOpenFoodFacts = "openfoodfacts"
	SourceLLM           = "llm"
)

// MacroEstimator estimates macros for a free-text food name.
type MacroEstimator interface {
	LookupMacros(ctx context.Context, foodName string) (models.PartialMacros, error)
}

// NutritionService resolves a food name to a partial macro record. It tries
// the cache, then Open Food Facts, then the LLM; each may be unconfigured.
type NutritionService struct {
	db         *gorm.DB
	offBaseURL string
	httpClient *http.Client
	estimator  MacroEstimator
}

// NewNutritionService wires the lookup chain. db, offBaseURL and estimator are optional.
func NewNutritionService(db *gorm.DB, offBaseURL string, estimator MacroEstimator) *NutritionService {
	return &NutritionService{
		db:         db,
		offBaseURL: strings.TrimRight(offBaseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Second},
		estimator:  estimator,
	}
}

// Lookup returns the macros and the source that produced them.
func (s *NutritionService) Lookup(ctx context.Context, foodName string) (models.PartialMacros, string, error) {
	query := normalizeQuery(foodName)
	if query == "" {
		return models.PartialMacros{}, "", ErrEmptyFoodName
	}

	if cached, ok := s.fromCache(ctx, query); ok {
		logger.Info("Nutrition served from cache", "query", query)
		return cached, SourceCache, nil
	}

	if s.offBaseURL != "" {
		macros, err := s.fetchFromOpenFoodFacts(ctx, foodName)
		if err == nil {
			s.store(ctx, query, SourceOpenFoodFacts, macros)
			return macros, SourceOpenFoodFacts, nil
		}
		logger.Warn("Open Food Facts lookup failed", "query", query, "error", err)
	}

	if s.estimator != nil {
		macros, err := s.estimator.LookupMacros(ctx, foodName)
		if err != nil {
			return models.PartialMacros{}, "", fmt.Errorf("estimating with llm: %w", err)
		}
		if macros.Empty() {
			return models.PartialMacros{}, "", ErrNoNutritionData
		}
		s.store(ctx, query, SourceLLM, macros)
		return macros, SourceLLM, nil
	}

	return models.PartialMacros{}, "", ErrNoNutritionData
}

func (s *NutritionService) fromCache(ctx context.Context, query string) (models.PartialMacros, bool) {
	if s.db == nil {
		return models.PartialMacros{}, false
	}
	var rec models.FoodLookup
	err := s.db.WithContext(ctx).Where("query = ?", query).First(&rec).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Lookup cache read failed", "query", query, "error", err)
		}
		return models.PartialMacros{}, false
	}
	return rec.Partial(), true
}

func (s *NutritionService) store(ctx context.Context, query, source string, m models.PartialMacros) {
	if s.db == nil {
		return
	}
	rec := models.FoodLookup{
		Query:      query,
		Source:     source,
		Protein:    m.Protein,
		Fat:        m.Fat,
		TotalCarbs: m.TotalCarbs,
		Fiber:      m.Fiber,
		Sugar:      m.Sugar,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "protein", "fat", "total_carbs", "fiber", "sugar", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		logger.Warn("Lookup cache write failed", "query", query, "error", err)
	}
}

type offSearchResponse struct {
	Products []struct {
		ProductName string `json:"product_name"`
		Nutriments  struct {
			EnergyKcal100g    json.Number `json:"energy-kcal_100g"`
			Proteins100g      json.Number `json:"proteins_100g"`
			Fat100g           json.Number `json:"fat_100g"`
			Carbohydrates100g json.Number `json:"carbohydrates_100g"`
			Fiber100g         json.Number `json:"fiber_100g"`
			Sugars100g        json.Number `json:"sugars_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// fetchFromOpenFoodFacts searches by the full name first, then by a
// simplified name. Values are per 100 g.
func (s *NutritionService) fetchFromOpenFoodFacts(ctx context.Context, foodName string) (models.PartialMacros, error) {
	queries := []string{strings.TrimSpace(foodName)}
	if simplified := simplifyQuery(foodName); simplified != "" && !strings.EqualFold(simplified, queries[0]) {
		queries = append(queries, simplified)
	}

	for _, query := range queries {
		logger.Info("Searching Open Food Facts", "query", query)
		u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=5",
			s.offBaseURL, url.QueryEscape(query))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return models.PartialMacros{}, err
		}
		req.Header.Set("User-Agent", "castleverde/1.0")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			logger.Warn("Open Food Facts search failed or timed out", "query", query, "error", err)
			continue
		}
		var result offSearchResponse
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			logger.Warn("Failed to decode Open Food Facts response", "query", query, "error", err)
			continue
		}

		for _, p := range result.Products {
			n := p.Nutriments
			// Only accept products with meaningful energy data
			if kcal, err := n.EnergyKcal100g.Float64(); err != nil || kcal <= 0 {
				continue
			}
			macros := models.PartialMacros{
				Protein:    per100g(n.Proteins100g),
				Fat:        per100g(n.Fat100g),
				TotalCarbs: per100g(n.Carbohydrates100g),
				Fiber:      per100g(n.Fiber100g),
				Sugar:      per100g(n.Sugars100g),
			}
			if macros.Empty() {
				continue
			}
			logger.Info("Nutrition fetched from Open Food Facts", "query", query, "product", p.ProductName)
			return macros, nil
		}
	}
	return models.PartialMacros{}, fmt.Errorf("no valid products found on Open Food Facts for any tried queries")
}

// per100g reads a nutriment, leaving it absent when missing or invalid and
// capping it at 100 g.
func per100g(n json.Number) *float64 {
	if n == "" {
		return nil
	}
	v, err := n.Float64()
	if err != nil || v < 0 {
		return nil
	}
	if v > 100 {
		v = 100
	}
	return &v
}

func normalizeQuery(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// simplifyQuery strips generic words that clutter search.
func simplifyQuery(s string) string {
	stripWords := map[string]bool{"organic": true, "fresh": true, "natural": true, "pure": true, "raw": true, "homemade": true}
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if !stripWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
