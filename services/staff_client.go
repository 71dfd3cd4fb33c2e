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

// HTTPStaffClient reaches the staff directory over its REST API.
type HTTPStaffClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPStaffClient(baseURL string) *HTTPStaffClient {
	return &HTTPStaffClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *HTTPStaffClient) ListActiveStaff(ctx context.Context, branchID string) ([]models.StaffInfo, error) {
	q := url.Values{}
	q.Set("branch_id", branchID)
	q.Set("active", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/staff?%s", c.baseURL, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("staff directory returned %d", resp.StatusCode)
	}

	var staff []models.StaffInfo
	if err := json.NewDecoder(resp.Body).Decode(&staff); err != nil {
		return nil, err
	}
	return staff, nil
}
