package services

import (
	"sync/atomic"

	"github.com/pmitra96/castleverde/models"
)

// IndexSettings are the tunable parts of the calculation. The ratio table
// and the score coefficients are not among them.
type IndexSettings struct {
	IncludeFiberEffect bool    `yaml:"include_fiber_effect"`
	NoiseEnabled       bool    `yaml:"noise_enabled"`
	ScoreNoiseFraction float64 `yaml:"score_noise_fraction"`
	MacroNoiseFraction float64 `yaml:"macro_noise_fraction"`
}

// DefaultIndexSettings keeps noise small relative to the signal.
func DefaultIndexSettings() IndexSettings {
	return IndexSettings{
		IncludeFiberEffect: true,
		NoiseEnabled:       true,
		ScoreNoiseFraction: 0.05,
		MacroNoiseFraction: 0.03,
	}
}

// Calculator produces the index response for an aggregated macro record.
type Calculator interface {
	Calculate(input models.MacroNutrients, anchor models.AnchorKey) (*models.CalculationResult, error)
}

// IndexService orchestrates scoring, balancing and noise. It keeps no
// per-request state; settings can be swapped at runtime by a config reload.
type IndexService struct {
	settings atomic.Pointer[IndexSettings]
	newRand  func() Rand
}

// IndexOption configures an IndexService.
type IndexOption func(*IndexService)

// WithSettings overrides DefaultIndexSettings.
func WithSettings(s IndexSettings) IndexOption {
	return func(svc *IndexService) {
		svc.settings.Store(&s)
	}
}

// WithSeed makes every calculation draw noise from a source seeded with seed,
// so identical inputs always give identical results.
func WithSeed(seed uint64) IndexOption {
	return func(svc *IndexService) {
		svc.newRand = func() Rand { return NewSeededRand(seed) }
	}
}

// WithRandFactory sets how a source is obtained for each calculation.
func WithRandFactory(f func() Rand) IndexOption {
	return func(svc *IndexService) {
		svc.newRand = f
	}
}

func NewIndexService(opts ...IndexOption) *IndexService {
	svc := &IndexService{
		newRand: func() Rand { return NewRand() },
	}
	defaults := DefaultIndexSettings()
	svc.settings.Store(&defaults)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Settings returns the settings in effect.
func (s *IndexService) Settings() IndexSettings {
	return *s.settings.Load()
}

// UpdateSettings swaps the settings for subsequent calculations.
func (s *IndexService) UpdateSettings(settings IndexSettings) {
	s.settings.Store(&settings)
}

// Calculate scores the input, balances it around the anchor and applies
// noise to both outputs. The echoed input is never perturbed. Nothing is
// computed unless the anchor and every input field are valid, and nothing is
// returned unless every output is finite.
func (s *IndexService) Calculate(input models.MacroNutrients, anchor models.AnchorKey) (*models.CalculationResult, error) {
	if !anchor.Valid() {
		return nil, &models.UnknownAnchorError{Value: string(anchor)}
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	settings := s.Settings()

	score, err := Score(input, settings.IncludeFiberEffect)
	if err != nil {
		return nil, err
	}
	balanced, err := Balance(anchor, input.Value(anchor))
	if err != nil {
		return nil, err
	}

	if settings.NoiseEnabled {
		rng := s.newRand()
		score = Perturb(score, settings.ScoreNoiseFraction, rng)
		balanced = PerturbMacros(balanced, settings.MacroNoiseFraction, rng)
		if err := checkScore(score); err != nil {
			return nil, err
		}
		if err := checkBalanced(anchor, balanced); err != nil {
			return nil, err
		}
	}

	return &models.CalculationResult{
		PredictedSpike: score,
		InputData:      input.WithNetCarbs(),
		BalancedMacros: balanced.WithoutNetCarbs(),
	}, nil
}
