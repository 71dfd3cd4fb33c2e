package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MobileMoneyClient initiates STK-push charges against the mobile money
// gateway. The gateway confirms or rejects the charge later through the
// callback URL; only synchronous rejections are reported here.
type MobileMoneyClient struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

func NewMobileMoneyClient(baseURL, apiKey, callbackURL string) *MobileMoneyClient {
	return &MobileMoneyClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chargeRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"` // minor units
	PhoneNumber   string `json:"phone_number"`
	CallbackURL   string `json:"callback_url,omitempty"`
}

func (c *MobileMoneyClient) InitiateCharge(ctx context.Context, transactionID uuid.UUID, amount int64, phoneNumber string) error {
	payload, err := json.Marshal(chargeRequest{
		TransactionID: transactionID.String(),
		Amount:        amount,
		PhoneNumber:   phoneNumber,
		CallbackURL:   c.callbackURL,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/charges", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
