package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/XquisitoAI/xquisito-backend/internal/errs"
)

// Ensure HTTPGateway implements Gateway
var _ Gateway = (*HTTPGateway)(nil)

// HTTPGateway talks to the charging provider over its REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP creates a gateway client for the provider at baseURL.
func NewHTTP(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chargeResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	RedirectURL   string `json:"redirect_url"`
	DeclineReason string `json:"decline_reason"`
}

// Charge posts the charge to the provider and interprets the outcome.
func (g *HTTPGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errs.Network("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errs.Network(fmt.Sprintf("payment provider returned %d", resp.StatusCode), nil)
	}

	var parsed chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errs.Network("failed to decode provider response", err)
	}

	switch parsed.Status {
	case "succeeded":
		return &ChargeResult{ChargeID: parsed.ID, Confirmed: true}, nil
	case "requires_action":
		return &ChargeResult{ChargeID: parsed.ID, RedirectURL: parsed.RedirectURL}, nil
	case "declined":
		reason := parsed.DeclineReason
		if reason == "" {
			reason = "card declined"
		}
		return nil, errs.GatewayDecline(reason)
	default:
		return nil, errs.Network(fmt.Sprintf("unexpected provider status %q", parsed.Status), nil)
	}
}
