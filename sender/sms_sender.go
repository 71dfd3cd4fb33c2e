package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, msg string) (SendResult, error)
}

// HTTPSMSSender delivers receipt SMS through a Twilio-compatible REST API.
type HTTPSMSSender struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

func NewHTTPSMSSender(baseURL, accountSID, authToken, fromNumber string) (*HTTPSMSSender, error) {
	if accountSID == "" {
		return nil, fmt.Errorf("SMS account SID not set")
	}
	if authToken == "" {
		return nil, fmt.Errorf("SMS auth token not set")
	}
	if fromNumber == "" {
		return nil, fmt.Errorf("SMS from number not set")
	}

	return &HTTPSMSSender{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (t *HTTPSMSSender) SendSMS(ctx context.Context, to, msg string) (SendResult, error) {
	apiURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	formData := url.Values{}
	formData.Set("To", to)
	formData.Set("From", t.fromNumber)
	formData.Set("Body", msg)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL,
		strings.NewReader(formData.Encode()))
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return SendResult{}, fmt.Errorf("SMS API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return SendResult{}, fmt.Errorf("failed to decode SMS response: %w", err)
	}

	return SendResult{MessageID: apiResp.SID, SentAt: time.Now()}, nil
}
