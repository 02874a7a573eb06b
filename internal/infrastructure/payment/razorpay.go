package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lms-backend/internal/config"
	"lms-backend/internal/domain/user"
)

const (
	customerNotify    = 1
	totalBillingCount = 12
	requestTimeout    = 15 * time.Second
)

var ErrNotConfigured = errors.New("payment gateway is not configured")

type createSubscriptionRequest struct {
	PlanID         string `json:"plan_id"`
	CustomerNotify int    `json:"customer_notify"`
	TotalCount     int    `json:"total_count"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayClient talks to the Razorpay subscriptions API with basic auth.
type RazorpayClient struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	planID     string
}

func NewRazorpayClient(cfg config.PaymentConfig) *RazorpayClient {
	return &RazorpayClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		planID:     cfg.PlanID,
	}
}

// CreateSubscription starts a monthly subscription on the configured plan.
func (c *RazorpayClient) CreateSubscription(ctx context.Context) (user.Subscription, error) {
	if c.keyID == "" || c.planID == "" {
		return user.Subscription{}, ErrNotConfigured
	}

	body, err := json.Marshal(createSubscriptionRequest{
		PlanID:         c.planID,
		CustomerNotify: customerNotify,
		TotalCount:     totalBillingCount,
	})
	if err != nil {
		return user.Subscription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscriptions", bytes.NewReader(body))
	if err != nil {
		return user.Subscription{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Subscription{}, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Subscription{}, fmt.Errorf("failed to read payment gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return user.Subscription{}, fmt.Errorf("payment gateway error %d: %s", resp.StatusCode, apiErr.Error.Description)
		}
		return user.Subscription{}, fmt.Errorf("payment gateway error %d", resp.StatusCode)
	}

	var sub subscriptionResponse
	if err := json.Unmarshal(raw, &sub); err != nil {
		return user.Subscription{}, fmt.Errorf("failed to decode subscription: %w", err)
	}
	if sub.ID == "" {
		return user.Subscription{}, errors.New("payment gateway returned no subscription id")
	}

	return user.Subscription{ID: sub.ID, Status: sub.Status}, nil
}
