package services_test

import (
	"errors"
	"math"
	"testing"

	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestBalanceProteinAnchor(t *testing.T) {
	t.Parallel()

	got, err := services.Balance(models.AnchorProtein, 8)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	want := models.MacroNutrients{Protein: 8, Fat: 4, TotalCarbs: 6, Fiber: 2, Sugar: 4}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.NetCarbs != nil {
		t.Fatalf("balanced output must not carry net carbs")
	}
}

func TestBalanceEveryAnchorKeepsRatio(t *testing.T) {
	t.Parallel()

	for _, anchor := range models.AnchorKeys {
		got, err := services.Balance(anchor, 6)
		if err != nil {
			t.Fatalf("%s: %v", anchor, err)
		}
		if !approx(got.Value(anchor), 6) {
			t.Fatalf("%s: anchor value not preserved, got %v", anchor, got.Value(anchor))
		}
		k := 6 / services.RatioWeight(anchor)
		for _, other := range models.AnchorKeys {
			if !approx(got.Value(other), services.RatioWeight(other)*k) {
				t.Fatalf("%s anchor: %s expected %v, got %v", anchor, other, services.RatioWeight(other)*k, got.Value(other))
			}
		}
	}
}

func TestBalanceZeroAnchorIsAllZero(t *testing.T) {
	t.Parallel()

	for _, anchor := range models.AnchorKeys {
		got, err := services.Balance(anchor, 0)
		if err != nil {
			t.Fatalf("%s: %v", anchor, err)
		}
		if got != (models.MacroNutrients{}) {
			t.Fatalf("%s: expected zero macros, got %+v", anchor, got)
		}
	}
}

func TestBalanceRejectsNegativeAndUnknown(t *testing.T) {
	t.Parallel()

	_, err := services.Balance(models.AnchorFat, -1)
	if !errors.Is(err, models.ErrInvalidMacroValue) {
		t.Fatalf("expected invalid macro value, got %v", err)
	}
	_, err = services.Balance(models.AnchorKey("Calories"), 5)
	if !errors.Is(err, models.ErrUnknownAnchor) {
		t.Fatalf("expected unknown anchor, got %v", err)
	}
}

func TestScoreFormula(t *testing.T) {
	t.Parallel()

	m := models.MacroNutrients{Protein: 20, Fat: 10, TotalCarbs: 30, Fiber: 5, Sugar: 8}
	with, err := services.Score(m, true)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !approx(with, 7.7) {
		t.Fatalf("expected 7.7, got %v", with)
	}
	without, err := services.Score(m, false)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !approx(without, 11.7) {
		t.Fatalf("expected 11.7, got %v", without)
	}
	if without <= with {
		t.Fatalf("fiber must lower the score when its effect is included")
	}
}

func TestScoreFiberHasNoMarginalEffectWhenExcluded(t *testing.T) {
	t.Parallel()

	base := models.MacroNutrients{Protein: 12, Fat: 7, TotalCarbs: 45, Sugar: 20}
	want, err := services.Score(base, false)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	for _, fiber := range []float64{0, 0.5, 3, 17, 60} {
		m := base
		m.Fiber = fiber
		got, err := services.Score(m, false)
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if got != want {
			t.Fatalf("fiber %v changed the score: %v vs %v", fiber, got, want)
		}
	}
}

func TestScoreIsNotClamped(t *testing.T) {
	t.Parallel()

	low, err := services.Score(models.MacroNutrients{Protein: 100, Fiber: 10}, true)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if low >= 0 {
		t.Fatalf("expected a negative score, got %v", low)
	}
	high, err := services.Score(models.MacroNutrients{TotalCarbs: 200, Sugar: 100}, true)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if high <= 50 {
		t.Fatalf("expected a score above the display range, got %v", high)
	}
}

func TestScoreRejectsNegativeInput(t *testing.T) {
	t.Parallel()

	_, err := services.Score(models.MacroNutrients{Fiber: -0.1}, true)
	var macroErr *models.InvalidMacroValueError
	if !errors.As(err, &macroErr) || macroErr.Field != "fiber" {
		t.Fatalf("expected fiber error, got %v", err)
	}
}

func TestPerturbIsBoundedAndReproducible(t *testing.T) {
	t.Parallel()

	const fraction = 0.1
	values := []float64{0.001, 1, 7.7, 42, 1e6, -15}
	first := make([]float64, len(values))
	rng := services.NewSeededRand(42)
	for i, v := range values {
		got := services.Perturb(v, fraction, rng)
		if math.Abs(got-v) > fraction*math.Abs(v)*services.NoiseBound {
			t.Fatalf("noise out of bounds for %v: %v", v, got)
		}
		first[i] = got
	}

	rng = services.NewSeededRand(42)
	for i, v := range values {
		if got := services.Perturb(v, fraction, rng); got != first[i] {
			t.Fatalf("same seed gave %v then %v", first[i], got)
		}
	}
}

func TestPerturbZeroAndDisabled(t *testing.T) {
	t.Parallel()

	rng := services.NewSeededRand(7)
	if got := services.Perturb(0, 0.5, rng); got != 0 {
		t.Fatalf("zero must stay zero, got %v", got)
	}
	if got := services.Perturb(3, 0, rng); got != 3 {
		t.Fatalf("zero fraction must not perturb, got %v", got)
	}
	if got := services.Perturb(3, 0.5, nil); got != 3 {
		t.Fatalf("nil source must not perturb, got %v", got)
	}
}

func TestPerturbMacrosPerturbsFieldsIndependently(t *testing.T) {
	t.Parallel()

	in := models.MacroNutrients{Protein: 10, Fat: 10, TotalCarbs: 10, Fiber: 0, Sugar: 10}
	got := services.PerturbMacros(in, 0.2, services.NewSeededRand(3))
	if got.Fiber != 0 {
		t.Fatalf("zero field must stay zero, got %v", got.Fiber)
	}
	if got.Protein == got.Fat && got.Fat == got.TotalCarbs && got.TotalCarbs == got.Sugar {
		t.Fatalf("expected independent draws, got %+v", got)
	}
	for _, k := range models.AnchorKeys {
		if math.Abs(got.Value(k)-in.Value(k)) > 0.2*in.Value(k) {
			t.Fatalf("%s out of bounds: %v", k, got.Value(k))
		}
	}
}

func TestCalculateWithoutNoise(t *testing.T) {
	t.Parallel()

	settings := services.DefaultIndexSettings()
	settings.NoiseEnabled = false
	svc := services.NewIndexService(services.WithSettings(settings))

	input := models.MacroNutrients{Protein: 20, Fat: 10, TotalCarbs: 30, Fiber: 5, Sugar: 8}
	got, err := svc.Calculate(input, models.AnchorProtein)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	echoed := got.InputData
	if echoed.Protein != 20 || echoed.Fat != 10 || echoed.TotalCarbs != 30 || echoed.Fiber != 5 || echoed.Sugar != 8 {
		t.Fatalf("input not echoed exactly: %+v", echoed)
	}
	if echoed.NetCarbs == nil || *echoed.NetCarbs != 25 {
		t.Fatalf("expected derived net carbs 25, got %v", echoed.NetCarbs)
	}
	want := models.MacroNutrients{Protein: 20, Fat: 10, TotalCarbs: 15, Fiber: 5, Sugar: 10}
	if got.BalancedMacros != want {
		t.Fatalf("expected balanced %+v, got %+v", want, got.BalancedMacros)
	}
	if !approx(got.PredictedSpike, 7.7) {
		t.Fatalf("expected 7.7, got %v", got.PredictedSpike)
	}
}

func TestCalculateNoiseLeavesInputUntouched(t *testing.T) {
	t.Parallel()

	svc := services.NewIndexService(services.WithSeed(99))
	input := models.MacroNutrients{Protein: 20, Fat: 10, TotalCarbs: 30, Fiber: 5, Sugar: 8}

	first, err := svc.Calculate(input, models.AnchorFat)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	second, err := svc.Calculate(input, models.AnchorFat)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if first.PredictedSpike != second.PredictedSpike || first.BalancedMacros != second.BalancedMacros {
		t.Fatalf("same seed must be idempotent: %+v vs %+v", first, second)
	}
	if first.InputData.WithoutNetCarbs() != input {
		t.Fatalf("noise leaked into echoed input: %+v", first.InputData)
	}
	if first.BalancedMacros.NetCarbs != nil {
		t.Fatalf("balanced output must not carry net carbs")
	}
	s := svc.Settings()
	if math.Abs(first.PredictedSpike-7.7) > s.ScoreNoiseFraction*7.7*services.NoiseBound+epsilon {
		t.Fatalf("score noise out of bounds: %v", first.PredictedSpike)
	}
}

func TestCalculateRejectsBeforeComputing(t *testing.T) {
	t.Parallel()

	calls := 0
	svc := services.NewIndexService(services.WithRandFactory(func() services.Rand {
		calls++
		return services.NewSeededRand(1)
	}))

	_, err := svc.Calculate(models.MacroNutrients{Protein: 1}, models.AnchorKey("Calories"))
	if !errors.Is(err, models.ErrUnknownAnchor) {
		t.Fatalf("expected unknown anchor, got %v", err)
	}
	_, err = svc.Calculate(models.MacroNutrients{Protein: 1, Fat: -2}, models.AnchorProtein)
	if !errors.Is(err, models.ErrInvalidMacroValue) {
		t.Fatalf("expected invalid macro value, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("noise source drawn for a rejected request")
	}
}

func TestUpdateSettingsTakesEffect(t *testing.T) {
	t.Parallel()

	svc := services.NewIndexService()
	settings := svc.Settings()
	settings.NoiseEnabled = false
	settings.IncludeFiberEffect = false
	svc.UpdateSettings(settings)

	got, err := svc.Calculate(models.MacroNutrients{Protein: 20, Fat: 10, TotalCarbs: 30, Fiber: 5, Sugar: 8}, models.AnchorProtein)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !approx(got.PredictedSpike, 11.7) {
		t.Fatalf("expected 11.7 without fiber effect, got %v", got.PredictedSpike)
	}
}

func TestBalanceRejectsOverflow(t *testing.T) {
	t.Parallel()

	_, err := services.Balance(models.AnchorFiber, 1e308)
	var macroErr *models.InvalidMacroValueError
	if !errors.As(err, &macroErr) || macroErr.Field != "fiber" {
		t.Fatalf("expected fiber overflow error, got %v", err)
	}
	if !math.IsInf(macroErr.Value, 1) {
		t.Fatalf("expected the overflowed value, got %v", macroErr.Value)
	}
}

type maxRand struct{}

func (maxRand) Float64() float64 { return 0.999999 }

func TestCalculateRejectsOverflowAfterNoise(t *testing.T) {
	t.Parallel()

	settings := services.DefaultIndexSettings()
	settings.MacroNoiseFraction = 0.5
	svc := services.NewIndexService(
		services.WithSettings(settings),
		services.WithRandFactory(func() services.Rand { return maxRand{} }),
	)

	_, err := svc.Calculate(models.MacroNutrients{Protein: 1.7e308}, models.AnchorProtein)
	if !errors.Is(err, models.ErrInvalidMacroValue) {
		t.Fatalf("expected invalid macro value, got %v", err)
	}
}
