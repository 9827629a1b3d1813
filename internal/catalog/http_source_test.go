package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "1", "name": "Tea"}, {"id": "2", "name": "Mug"}]`))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id": "1", "name": "Tea", "price": "2.10", "meta_data": [{"key": "barcode", "value": "4006381333931"}]}`))
	})
	mux.HandleFunc("/products/2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "2", "name": "Mug"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSource_Products(t *testing.T) {
	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL+"/", "secret")

	products, err := src.Products(context.Background(), []string{"2", "1", "9"})
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Products() error = %v, want *MissingError", err)
	}
	if len(missing.IDs) != 1 || missing.IDs[0] != "9" {
		t.Errorf("missing ids = %v, want [9]", missing.IDs)
	}
	if len(products) != 2 || products[0].ID != "2" || products[1].ID != "1" {
		t.Fatalf("Products() = %+v", products)
	}
	if products[1].Barcode() != "4006381333931" {
		t.Errorf("Barcode() = %q", products[1].Barcode())
	}
}

func TestHTTPSource_List(t *testing.T) {
	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL, "")

	products, err := src.Products(context.Background(), nil)
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 2 {
		t.Errorf("Products() returned %d products, want 2", len(products))
	}
}

func TestHTTPSource_Unauthorized(t *testing.T) {
	srv := newCatalogServer(t)
	src := NewHTTPSource(srv.URL, "wrong")

	if _, err := src.Products(context.Background(), []string{"1"}); err == nil {
		t.Error("Products() expected error for unauthorized response")
	}
}
