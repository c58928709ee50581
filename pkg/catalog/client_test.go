package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSearchByNumberQueryParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"number":    r.URL.Query().Get("number"),
			"total":     r.URL.Query().Get("total"),
			"setPrefix": r.URL.Query().Get("setPrefix"),
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Entry{{ID: "tg-13"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	entries, err := c.SearchByNumber(context.Background(), "TG13", "30", "TG")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "tg-13" {
		t.Fatalf("entries: %+v", entries)
	}
	if gotQuery["number"] != "TG13" || gotQuery["total"] != "30" || gotQuery["setPrefix"] != "TG" {
		t.Fatalf("query params: %v", gotQuery)
	}
}

func TestSearchByNumberOmitsEmptyScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("total") || r.URL.Query().Has("setPrefix") {
			t.Errorf("unscoped query must not carry total/setPrefix: %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Entry{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.SearchByNumber(context.Background(), "151", "", ""); err != nil {
		t.Fatalf("search: %v", err)
	}
}

func TestGetSetChaseCardCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": Entry{ID: "sv3pt5-205"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	for i := 0; i < 3; i++ {
		top, err := c.GetSetChaseCard(context.Background(), "sv3pt5")
		if err != nil {
			t.Fatalf("chase: %v", err)
		}
		if top == nil || top.ID != "sv3pt5-205" {
			t.Fatalf("top: %+v", top)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestGetPriceNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": null}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	p, err := c.GetPrice(context.Background(), "sv3pt5-151", "Holofoil")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil price, got %+v", p)
	}
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.SearchByNumber(context.Background(), "151", "", ""); err == nil {
		t.Fatalf("expected error on 502")
	}
}
