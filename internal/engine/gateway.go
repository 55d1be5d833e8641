package engine

import "context"

// OrderRequest asks the gateway to open a checkout for an amount in the
// currency's minor unit. Metadata is echoed back on the capture and carries
// the contract/checkpoint binding.
type OrderRequest struct {
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// GatewayOrder is the opaque order handle returned to the payer.
type GatewayOrder struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	AmountMinor      int64  `json:"amount_minor"`
	Currency         string `json:"currency"`
}

// GatewayCapture is the gateway's verdict on a payment reference.
type GatewayCapture struct {
	Reference   string
	AmountMinor int64
	Currency    string
	Verified    bool
	Metadata    map[string]string
}

// Gateway is the external payment processor. Order creation is side-effect
// free on the ledger; capture verification is the only path that credits it.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
	VerifyCapture(ctx context.Context, reference string) (*GatewayCapture, error)
}
