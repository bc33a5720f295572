package services

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// ErrCartNotFound is returned for an unknown cart id.
var ErrCartNotFound = errors.New("cart not found")

// CartUpdate is sent to subscribers whenever a cart's totals are rebuilt.
type CartUpdate struct {
	CartID string            `json:"cart_id"`
	Totals models.CartTotals `json:"totals"`
}

// CartRegistry holds the in-memory carts of live sessions. It is owned by
// whoever builds the router; there is no package-level instance.
type CartRegistry struct {
	calc          Calculator
	defaultAnchor models.AnchorKey

	mu    sync.RWMutex
	carts map[string]*Cart

	subMux      sync.RWMutex
	subscribers map[string]map[chan CartUpdate]bool
}

func NewCartRegistry(calc Calculator, defaultAnchor models.AnchorKey) *CartRegistry {
	return &CartRegistry{
		calc:          calc,
		defaultAnchor: defaultAnchor,
		carts:         make(map[string]*Cart),
		subscribers:   make(map[string]map[chan CartUpdate]bool),
	}
}

// Create starts a new cart. An empty anchor selects the registry default.
func (r *CartRegistry) Create(anchor models.AnchorKey) (string, *Cart, error) {
	if anchor == "" {
		anchor = r.defaultAnchor
	}
	cart, err := NewCart(r.calc, anchor)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	cart.OnChange(func(totals models.CartTotals) {
		r.broadcast(CartUpdate{CartID: id, Totals: totals})
	})

	r.mu.Lock()
	r.carts[id] = cart
	r.mu.Unlock()

	logger.Info("Cart created", "cart_id", id, "anchor", anchor)
	return id, cart, nil
}

// Get returns the cart with the given id.
func (r *CartRegistry) Get(id string) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// Delete drops a cart and disconnects its subscribers. Unknown ids are ignored.
func (r *CartRegistry) Delete(id string) {
	r.mu.Lock()
	_, ok := r.carts[id]
	delete(r.carts, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	r.subMux.Lock()
	for ch := range r.subscribers[id] {
		close(ch)
	}
	delete(r.subscribers, id)
	r.subMux.Unlock()

	logger.Info("Cart deleted", "cart_id", id)
}

// Len returns the number of live carts.
func (r *CartRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}

// Subscribe registers ch for updates of one cart.
func (r *CartRegistry) Subscribe(cartID string, ch chan CartUpdate) error {
	if _, err := r.Get(cartID); err != nil {
		return err
	}
	r.subMux.Lock()
	defer r.subMux.Unlock()
	if r.subscribers[cartID] == nil {
		r.subscribers[cartID] = make(map[chan CartUpdate]bool)
	}
	r.subscribers[cartID][ch] = true
	return nil
}

// Unsubscribe removes and closes ch. It is safe to call after Delete.
func (r *CartRegistry) Unsubscribe(cartID string, ch chan CartUpdate) {
	r.subMux.Lock()
	defer r.subMux.Unlock()
	subs, ok := r.subscribers[cartID]
	if !ok || !subs[ch] {
		return
	}
	delete(subs, ch)
	close(ch)
}

func (r *CartRegistry) broadcast(update CartUpdate) {
	r.subMux.RLock()
	defer r.subMux.RUnlock()
	for ch := range r.subscribers[update.CartID] {
		select {
		case ch <- update:
		default:
			// Drop update if subscriber is slow
			logger.Debug("Dropping cart update for slow subscriber", "cart_id", update.CartID)
		}
	}
}
