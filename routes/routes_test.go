package routes_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pmitra96/castleverde/controllers"
	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/routes"
	"github.com/pmitra96/castleverde/services"
)

func newServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	settings := services.DefaultIndexSettings()
	settings.NoiseEnabled = false
	index := services.NewIndexService(services.WithSettings(settings))
	h := &controllers.Handler{
		Index: index,
		Carts: services.NewCartRegistry(index, models.AnchorProtein),
	}
	ts := httptest.NewServer(routes.SetupRouter(h, routes.Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		APIKey:         apiKey,
	}))
	t.Cleanup(ts.Close)
	return ts
}

type cartBody struct {
	CartID string            `json:"cart_id"`
	Items  []models.CartItem `json:"items"`
	Totals models.CartTotals `json:"totals"`
}

func do(t *testing.T, method, url, body string, wantStatus int) cartBody {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", method, url, wantStatus, resp.StatusCode)
	}
	var out cartBody
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return out
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "s3cret")
	resp, err := http.Get(ts.URL + "/_healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/routes/castle-verde/calculate-index", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without api key, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "")
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/routes/castle-verde/calculate-index", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("missing allow-origin header: %v", resp.Header)
	}
}

func TestCartLifecycle(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "")
	created := do(t, http.MethodPost, ts.URL+"/routes/carts", "", http.StatusCreated)
	if created.CartID == "" || created.Totals.AnchorKey != models.AnchorProtein {
		t.Fatalf("unexpected cart: %+v", created)
	}
	base := ts.URL + "/routes/carts/" + created.CartID

	got := do(t, http.MethodPost, base+"/items",
		`{"id": "oats", "name": "Oats", "macros": {"protein": 5, "fat": 2.5, "total_carbs": 27, "fiber": 4}, "servings": 2}`,
		http.StatusCreated)
	if got.Totals.Total.Protein != 10 || got.Totals.Total.TotalCarbs != 54 || got.Totals.Total.Sugar != 0 {
		t.Fatalf("servings not applied: %+v", got.Totals.Total)
	}
	if got.Totals.Total.NetCarbs == nil || *got.Totals.Total.NetCarbs != 46 {
		t.Fatalf("expected net carbs from totals, got %v", got.Totals.Total.NetCarbs)
	}

	do(t, http.MethodPost, base+"/items", `{"id": "oats", "name": "Oats", "macros": {}}`, http.StatusConflict)
	do(t, http.MethodPost, base+"/items", `{"name": "Bad", "macros": {"fat": -1}}`, http.StatusUnprocessableEntity)

	got = do(t, http.MethodPost, base+"/items", `{"name": "Egg", "macros": {"protein": 6, "fat": 5}}`, http.StatusCreated)
	if len(got.Items) != 2 || got.Items[1].ID == "" {
		t.Fatalf("expected a generated id, got %+v", got.Items)
	}

	before := do(t, http.MethodGet, base, "", http.StatusOK)
	after := do(t, http.MethodDelete, base+"/items/missing", "", http.StatusOK)
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("removing an unknown id changed the cart")
	}

	got = do(t, http.MethodPut, base+"/anchor", `{"anchor_id": "fiber"}`, http.StatusOK)
	if got.Totals.AnchorKey != models.AnchorFiber || got.Totals.BalancedMacros.Fiber != 8 {
		t.Fatalf("unexpected totals after anchor change: %+v", got.Totals)
	}
	do(t, http.MethodPut, base+"/anchor", `{"anchor_id": "Calories"}`, http.StatusUnprocessableEntity)

	got = do(t, http.MethodDelete, base+"/items/oats", "", http.StatusOK)
	if len(got.Items) != 1 || got.Totals.Total.Protein != 6 {
		t.Fatalf("unexpected cart after remove: %+v", got)
	}
	got = do(t, http.MethodDelete, base+"/items", "", http.StatusOK)
	if got.Totals.ItemCount != 0 || got.Totals.Total.Protein != 0 {
		t.Fatalf("clear left items: %+v", got.Totals)
	}

	do(t, http.MethodDelete, base, "", http.StatusNoContent)
	do(t, http.MethodGet, base, "", http.StatusNotFound)
}

func TestCartRejectsOverflowingItem(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "")
	created := do(t, http.MethodPost, ts.URL+"/routes/carts", `{"anchor_id": "Fiber"}`, http.StatusCreated)
	base := ts.URL + "/routes/carts/" + created.CartID

	do(t, http.MethodPost, base+"/items", `{"name": "Huge", "macros": {"total_carbs": 1e308, "fiber": 1e308}}`, http.StatusUnprocessableEntity)
	got := do(t, http.MethodGet, base, "", http.StatusOK)
	if len(got.Items) != 0 || got.Totals.ItemCount != 0 {
		t.Fatalf("rejected item reached the cart: %+v", got)
	}
}

func TestCreateCartWithAnchor(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "")
	got := do(t, http.MethodPost, ts.URL+"/routes/carts", `{"anchor_id": "total_carbs"}`, http.StatusCreated)
	if got.Totals.AnchorKey != models.AnchorTotalCarbs {
		t.Fatalf("expected TotalCarbs, got %s", got.Totals.AnchorKey)
	}
	do(t, http.MethodPost, ts.URL+"/routes/carts", `{"anchor_id": "Calories"}`, http.StatusUnprocessableEntity)
}

func TestCartEventsStream(t *testing.T) {
	t.Parallel()

	ts := newServer(t, "")
	created := do(t, http.MethodPost, ts.URL+"/routes/carts", "", http.StatusCreated)
	base := ts.URL + "/routes/carts/" + created.CartID

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	events := make(chan services.CartUpdate, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var update services.CartUpdate
			if json.Unmarshal([]byte(data), &update) == nil && update.CartID != "" {
				events <- update
			}
		}
	}()

	select {
	case first := <-events:
		if first.Totals.ItemCount != 0 {
			t.Fatalf("expected the empty cart first, got %+v", first.Totals)
		}
	case <-ctx.Done():
		t.Fatalf("no initial event")
	}

	do(t, http.MethodPost, base+"/items", `{"name": "Rice", "macros": {"total_carbs": 28}}`, http.StatusCreated)
	select {
	case update := <-events:
		if update.Totals.ItemCount != 1 || update.Totals.Total.TotalCarbs != 28 {
			t.Fatalf("unexpected update: %+v", update.Totals)
		}
	case <-ctx.Done():
		t.Fatalf("no update after add")
	}
}
