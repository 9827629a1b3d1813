package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPSource reads products from a REST catalog:
//
//	GET {BaseURL}/products       -> list of products
//	GET {BaseURL}/products/{id}  -> one product, 404 when unknown
type HTTPSource struct {
	BaseURL string
	Token   string // optional bearer token
	client  *retryablehttp.Client
}

// NewHTTPSource creates a catalog source for a remote product API.
// Transient failures are retried a bounded number of times.
func NewHTTPSource(baseURL, token string) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil // Disable logging

	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  client,
	}
}

// Products fetches the requested products one by one, or the whole list when ids is empty
func (s *HTTPSource) Products(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		body, status, err := s.get(ctx, s.BaseURL+"/products")
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch product list (status %d): %s", status, string(body))
		}
		return ParseCatalog(body, "json")
	}

	products := make([]Product, 0, len(ids))
	var missing []string
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		body, status, err := s.get(ctx, s.BaseURL+"/products/"+url.PathEscape(id))
		if err != nil {
			return nil, err
		}
		if status == http.StatusNotFound {
			missing = append(missing, id)
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch product %s (status %d): %s", id, status, string(body))
		}

		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
		}
		p, err := DecodeProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", id, err)
		}
		products = append(products, p)
	}

	if len(missing) > 0 {
		return products, &MissingError{IDs: missing}
	}
	return products, nil
}

func (s *HTTPSource) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read catalog response: %w", err)
	}
	return body, resp.StatusCode, nil
}
