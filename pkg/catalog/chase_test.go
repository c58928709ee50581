package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func chaseServer(t *testing.T, topID string, price *Price) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chase"):
			_ = json.NewEncoder(w).Encode(map[string]any{"data": Entry{ID: topID}})
		case strings.HasSuffix(r.URL.Path, "/price"):
			_ = json.NewEncoder(w).Encode(map[string]any{"data": price})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestEvaluateChaseExactMatch(t *testing.T) {
	srv := chaseServer(t, "sv3pt5-205", nil)
	defer srv.Close()
	c := NewClient(srv.URL, "")

	cand := Candidate{CatalogID: "sv3pt5-205", SetID: "sv3pt5", Price: &Price{Market: 300}}
	res := c.EvaluateChase(context.Background(), cand)
	if !res.IsChase {
		t.Fatalf("the set's top card must be the chase")
	}
}

func TestEvaluateChaseNearMissIsNotChase(t *testing.T) {
	// Identity decides, not price distance: a card a cent under the top is
	// still not a chase.
	srv := chaseServer(t, "sv3pt5-205", nil)
	defer srv.Close()
	c := NewClient(srv.URL, "")

	cand := Candidate{CatalogID: "sv3pt5-204", SetID: "sv3pt5", Price: &Price{Market: 299.99}}
	if res := c.EvaluateChase(context.Background(), cand); res.IsChase {
		t.Fatalf("non-top card must not be a chase regardless of price")
	}
}

func TestEvaluateChaseNoMetadata(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "")
	cand := Candidate{Name: "Guess", Price: &Price{Market: 1}}
	res := c.EvaluateChase(context.Background(), cand)
	if res.IsChase {
		t.Fatalf("candidate without catalog or set id can never be a chase")
	}
	if res.Price == nil || res.Price.Market != 1 {
		t.Fatalf("existing price must be kept: %+v", res.Price)
	}
}

func TestEvaluateChaseResolvesMissingPrice(t *testing.T) {
	srv := chaseServer(t, "sv3pt5-205", &Price{Market: 42.5, Currency: "USD"})
	defer srv.Close()
	c := NewClient(srv.URL, "")

	cand := Candidate{CatalogID: "sv3pt5-151", SetID: "sv3pt5", Variant: "Holofoil"}
	res := c.EvaluateChase(context.Background(), cand)
	if res.Price == nil || res.Price.Market != 42.5 {
		t.Fatalf("expected resolved price 42.5, got %+v", res.Price)
	}
}

func TestEvaluateChaseUnreachableCatalog(t *testing.T) {
	c := NewClient("http://unreachable.invalid", "")
	cand := Candidate{CatalogID: "x-1", SetID: "x", Price: &Price{Market: 5}}
	res := c.EvaluateChase(context.Background(), cand)
	if res.IsChase {
		t.Fatalf("transient catalog failure must degrade to not-chase")
	}
}
