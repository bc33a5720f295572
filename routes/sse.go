package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/services"
)

// CartEventsSSE streams a cart_totals event every time the cart's totals are
// rebuilt. The stream ends when the client goes away or the cart is deleted.
func CartEventsSSE(carts *services.CartRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil {
			http.Error(w, "carts not configured", http.StatusServiceUnavailable)
			return
		}
		cartID := chi.URLParam(r, "cart_id")
		cart, err := carts.Get(cartID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		updateCh := make(chan services.CartUpdate, 10)
		if err := carts.Subscribe(cartID, updateCh); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		defer carts.Unsubscribe(cartID, updateCh)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		logger.Info("SSE client connected", "cart_id", cartID)

		// Current state first so the client never starts blank.
		if !writeEvent(w, services.CartUpdate{CartID: cartID, Totals: cart.Totals()}) {
			return
		}
		flusher.Flush()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				logger.Info("SSE client disconnected", "cart_id", cartID)
				return
			case update, ok := <-updateCh:
				if !ok {
					fmt.Fprint(w, "event: cart_deleted\ndata: {}\n\n")
					flusher.Flush()
					return
				}
				if !writeEvent(w, update) {
					continue
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, update services.CartUpdate) bool {
	data, err := json.Marshal(update)
	if err != nil {
		logger.Error("Failed to marshal cart update", "error", err)
		return false
	}
	fmt.Fprintf(w, "event: cart_totals\ndata: %s\n\n", data)
	return true
}
