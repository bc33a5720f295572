package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pmitra96/castleverde/models"
)

// Cart aggregates the macros of its items. Every mutation rebuilds the totals
// from the full item set; nothing is patched incrementally. One lock per cart
// serializes mutations.
type Cart struct {
	mu       sync.RWMutex
	items    []models.CartItem
	anchor   models.AnchorKey
	calc     Calculator
	totals   models.CartTotals
	onChange func(models.CartTotals)
}

// NewCart returns an empty cart. calc may be nil, in which case totals carry
// only the aggregate.
func NewCart(calc Calculator, anchor models.AnchorKey) (*Cart, error) {
	if !anchor.Valid() {
		return nil, &models.UnknownAnchorError{Value: string(anchor)}
	}
	c := &Cart{anchor: anchor, calc: calc}
	totals, err := c.project(nil, anchor)
	if err != nil {
		return nil, err
	}
	c.totals = totals
	return c, nil
}

// OnChange registers fn to receive the totals after every effective change.
// fn runs with the cart lock released.
func (c *Cart) OnChange(fn func(models.CartTotals)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Add appends an item, assigning an id when it has none. The cart is left
// unchanged when the id is taken or the macros are invalid.
func (c *Cart) Add(item models.CartItem) (models.CartItem, error) {
	if err := item.Macros.Validate(); err != nil {
		return models.CartItem{}, err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.Macros = item.Macros.WithoutNetCarbs()

	c.mu.Lock()
	for _, existing := range c.items {
		if existing.ID == item.ID {
			c.mu.Unlock()
			return models.CartItem{}, &models.DuplicateIDError{ID: item.ID}
		}
	}
	next := make([]models.CartItem, len(c.items), len(c.items)+1)
	copy(next, c.items)
	next = append(next, item)
	if err := c.commit(next, c.anchor); err != nil {
		c.mu.Unlock()
		return models.CartItem{}, err
	}
	c.mu.Unlock()

	c.notify()
	return item, nil
}

// Remove drops the item with the given id. An unknown id is a no-op.
func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	idx := -1
	for i, existing := range c.items {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	next := make([]models.CartItem, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	if err := c.commit(next, c.anchor); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	if err := c.commit(nil, c.anchor); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// SetAnchor changes the anchor used for the balanced macros.
func (c *Cart) SetAnchor(anchor models.AnchorKey) error {
	if !anchor.Valid() {
		return &models.UnknownAnchorError{Value: string(anchor)}
	}
	c.mu.Lock()
	if err := c.commit(c.items, anchor); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// Aggregate returns the field-wise sum of the current items.
func (c *Cart) Aggregate() models.MacroNutrients {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Aggregate(c.items)
}

// Items returns a copy of the current items in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Snapshot returns the items and the totals built from exactly those items.
func (c *Cart) Snapshot() ([]models.CartItem, models.CartTotals) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]models.CartItem, len(c.items))
	copy(items, c.items)
	return items, c.totals
}

// Totals returns the totals computed at the last change.
func (c *Cart) Totals() models.CartTotals {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totals
}

// commit recomputes the totals for items and anchor and, only on success,
// installs both. Callers hold c.mu.
func (c *Cart) commit(items []models.CartItem, anchor models.AnchorKey) error {
	totals, err := c.project(items, anchor)
	if err != nil {
		return err
	}
	c.items = items
	c.anchor = anchor
	c.totals = totals
	return nil
}

func (c *Cart) project(items []models.CartItem, anchor models.AnchorKey) (models.CartTotals, error) {
	total := Aggregate(items)
	totals := models.CartTotals{
		Total:     total,
		AnchorKey: anchor,
		ItemCount: len(items),
	}
	if c.calc == nil {
		return totals, nil
	}
	result, err := c.calc.Calculate(total, anchor)
	if err != nil {
		return models.CartTotals{}, err
	}
	totals.BalancedMacros = result.BalancedMacros
	totals.PredictedSpike = result.PredictedSpike
	totals.Zone = models.ZoneFor(result.PredictedSpike)
	return totals, nil
}

func (c *Cart) notify() {
	c.mu.RLock()
	fn := c.onChange
	totals := c.totals
	c.mu.RUnlock()
	if fn != nil {
		fn(totals)
	}
}

// Aggregate sums items field by field in exact decimal arithmetic, so the
// result does not depend on item order. Net carbs is derived from the summed
// totals rather than summed per item.
func Aggregate(items []models.CartItem) models.MacroNutrients {
	var protein, fat, totalCarbs, fiber, sugar decimal.Decimal
	for _, it := range items {
		protein = protein.Add(decimal.NewFromFloat(it.Macros.Protein))
		fat = fat.Add(decimal.NewFromFloat(it.Macros.Fat))
		totalCarbs = totalCarbs.Add(decimal.NewFromFloat(it.Macros.TotalCarbs))
		fiber = fiber.Add(decimal.NewFromFloat(it.Macros.Fiber))
		sugar = sugar.Add(decimal.NewFromFloat(it.Macros.Sugar))
	}
	return models.MacroNutrients{
		Protein:    protein.InexactFloat64(),
		Fat:        fat.InexactFloat64(),
		TotalCarbs: totalCarbs.InexactFloat64(),
		Fiber:      fiber.InexactFloat64(),
		Sugar:      sugar.InexactFloat64(),
	}.WithNetCarbs()
}
