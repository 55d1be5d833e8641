package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"workbridge/internal/engine"
)

// PaystackGateway implements engine.Gateway against the Paystack transaction
// API. Amounts are carried in the currency's minor unit end to end.
type PaystackGateway struct {
	SecretKey string
	BaseURL   string
	client    *http.Client
}

func NewPaystackGateway(secretKey, baseURL string) *PaystackGateway {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackGateway{
		SecretKey: secretKey,
		BaseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string            `json:"status"`
		Reference string            `json:"reference"`
		Amount    int64             `json:"amount"`
		Currency  string            `json:"currency"`
		PaidAt    string            `json:"paid_at"`
		Channel   string            `json:"channel"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

func (g *PaystackGateway) makeRequest(ctx context.Context, method, endpoint string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	return g.client.Do(req)
}

// CreateOrder initializes a checkout and returns the opaque order handle.
func (g *PaystackGateway) CreateOrder(ctx context.Context, req engine.OrderRequest) (*engine.GatewayOrder, error) {
	reference := "WB-" + uuid.NewString()
	payload := map[string]interface{}{
		"email":     req.CustomerEmail,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"reference": reference,
		"metadata":  req.Metadata,
	}

	resp, err := g.makeRequest(ctx, http.MethodPost, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result initializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Status {
		return nil, fmt.Errorf("paystack error: %s", result.Message)
	}

	return &engine.GatewayOrder{
		Reference:        result.Data.Reference,
		AuthorizationURL: result.Data.AuthorizationURL,
		AccessCode:       result.Data.AccessCode,
		AmountMinor:      req.AmountMinor,
		Currency:         req.Currency,
	}, nil
}

// VerifyCapture asks the gateway for the authoritative state of a reference.
// A capture is verified only when the gateway reports a successful charge.
func (g *PaystackGateway) VerifyCapture(ctx context.Context, reference string) (*engine.GatewayCapture, error) {
	resp, err := g.makeRequest(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Status {
		return nil, fmt.Errorf("paystack error: %s", result.Message)
	}

	return &engine.GatewayCapture{
		Reference:   result.Data.Reference,
		AmountMinor: result.Data.Amount,
		Currency:    result.Data.Currency,
		Verified:    result.Data.Status == "success",
		Metadata:    result.Data.Metadata,
	}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 signature Paystack sends in
// the x-paystack-signature header against the raw body.
func (g *PaystackGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(g.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
