package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pos-service/models"
)

// HTTPCatalogClient reaches the catalog service over its REST API.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPCatalogClient(baseURL string) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPCatalogClient) FindService(ctx context.Context, id string) (*models.ServiceInfo, error) {
	var svc models.ServiceInfo
	if err := c.getJSON(ctx, fmt.Sprintf("%s/services/%s", c.baseURL, url.PathEscape(id)), &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *HTTPCatalogClient) FindProduct(ctx context.Context, id string) (*models.ProductInfo, error) {
	var prod models.ProductInfo
	if err := c.getJSON(ctx, fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id)), &prod); err != nil {
		return nil, err
	}
	return &prod, nil
}

func (c *HTTPCatalogClient) ListActiveServices(ctx context.Context, branchID, category, search string) ([]models.ServiceInfo, error) {
	var services []models.ServiceInfo
	if err := c.getJSON(ctx, c.listURL("services", branchID, category, search), &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *HTTPCatalogClient) ListAvailableProducts(ctx context.Context, branchID, category, search string) ([]models.ProductInfo, error) {
	var products []models.ProductInfo
	if err := c.getJSON(ctx, c.listURL("products", branchID, category, search), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPCatalogClient) listURL(resource, branchID, category, search string) string {
	q := url.Values{}
	q.Set("branch_id", branchID)
	q.Set("active", "true")
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("q", search)
	}
	return fmt.Sprintf("%s/%s?%s", c.baseURL, resource, q.Encode())
}

func (c *HTTPCatalogClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrItemNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog service returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
