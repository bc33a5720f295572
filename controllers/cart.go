package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

type createCartRequest struct {
	AnchorID *string `json:"anchor_id"`
}

type addItemRequest struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Macros   *macroInput `json:"macros"`
	Servings *float64    `json:"servings"`
}

type setAnchorRequest struct {
	AnchorID *string `json:"anchor_id"`
}

type cartResponse struct {
	CartID string            `json:"cart_id"`
	Items  []models.CartItem `json:"items"`
	Totals models.CartTotals `json:"totals"`
}

func newCartResponse(id string, cart *services.Cart) cartResponse {
	items, totals := cart.Snapshot()
	return cartResponse{CartID: id, Items: items, Totals: totals}
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) (string, *services.Cart, bool) {
	if h.Carts == nil {
		writeDetail(w, http.StatusServiceUnavailable, "carts not configured")
		return "", nil, false
	}
	id := chi.URLParam(r, "cart_id")
	cart, err := h.Carts.Get(id)
	if err != nil {
		writeEngineError(w, err)
		return "", nil, false
	}
	return id, cart, true
}

// CreateCart starts a session cart. The body is optional.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	if h.Carts == nil {
		writeDetail(w, http.StatusServiceUnavailable, "carts not configured")
		return
	}
	var req createCartRequest
	if r.ContentLength != 0 {
		if ve := decodeBody(w, r, &req); ve != nil && ve.Detail[0].Type != models.ErrTypeMissing {
			writeValidation(w, ve)
			return
		}
	}

	var anchor models.AnchorKey
	if req.AnchorID != nil {
		ve := &models.ValidationError{}
		anchor = parseAnchorField(ve, req.AnchorID, "body", "anchor_id")
		if ve.Err() != nil {
			writeValidation(w, ve)
			return
		}
	}

	id, cart, err := h.Carts.Create(anchor)
	if err != nil {
		writeEngineError(w, err, "body", "anchor_id")
		return
	}
	writeJSON(w, http.StatusCreated, newCartResponse(id, cart))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(id, cart))
}

// AddCartItem adds one food. Absent macros count as zero and every present
// macro is multiplied by servings.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if ve := decodeBody(w, r, &req); ve != nil {
		writeValidation(w, ve)
		return
	}

	ve := &models.ValidationError{}
	if strings.TrimSpace(req.Name) == "" {
		ve.Add("Field required", models.ErrTypeMissing, "body", "name")
	}
	var macros models.PartialMacros
	if req.Macros == nil {
		ve.Add("Field required", models.ErrTypeMissing, "body", "macros")
	} else {
		macros = req.Macros.optional(ve, "body", "macros")
	}
	servings := 1.0
	if req.Servings != nil {
		servings = *req.Servings
	}
	if ve.Err() != nil {
		writeValidation(w, ve)
		return
	}

	resolved, missing := macros.Scale(servings).Resolve(0)
	if len(missing) > 0 {
		logger.Debug("Cart item macros defaulted to zero", "cart_id", id, "fields", missing)
	}
	item, err := cart.Add(models.CartItem{ID: req.ID, Name: req.Name, Macros: resolved})
	if err != nil {
		writeEngineError(w, err, "body", "macros")
		return
	}
	logger.Info("Cart item added", "cart_id", id, "item_id", item.ID, "name", item.Name)
	writeJSON(w, http.StatusCreated, newCartResponse(id, cart))
}

// RemoveCartItem drops one item. Unknown item ids leave the cart as it was.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	if err := cart.Remove(chi.URLParam(r, "item_id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	if err := cart.Clear(); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) SetCartAnchor(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.cart(w, r)
	if !ok {
		return
	}
	var req setAnchorRequest
	if ve := decodeBody(w, r, &req); ve != nil {
		writeValidation(w, ve)
		return
	}
	ve := &models.ValidationError{}
	anchor := parseAnchorField(ve, req.AnchorID, "body", "anchor_id")
	if ve.Err() != nil {
		writeValidation(w, ve)
		return
	}
	if err := cart.SetAnchor(anchor); err != nil {
		writeEngineError(w, err, "body", "anchor_id")
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(id, cart))
}

func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.cart(w, r)
	if !ok {
		return
	}
	h.Carts.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
