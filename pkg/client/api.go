package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/kolport/kolport-go/pkg/wallet"
)

// Backend endpoints used by the domain methods.
const (
	endpointVerification   = "/wallet/verification"
	endpointWhitelistCheck = "/whitelist/check"
	endpointKOLMetrics     = "/kol/metrics"
	endpointKOLLeaderboard = "/kol/leaderboard"
	endpointTokenTransfer  = "/token/transfer"
)

// EventTransferCompleted is emitted on the client's event bus after a
// successful token transfer.
const EventTransferCompleted = "token:transfer"

// validate checks request structs; the custom "wallet" tag delegates
// to the address-format validator.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return wallet.IsValid(fl.Field().String())
	})
	return v
}

// VerificationStatus is the payload of a verification-status check.
type VerificationStatus struct {
	Wallet     string `json:"wallet"`
	Verified   bool   `json:"verified"`
	Tier       string `json:"tier,omitempty"`
	VerifiedAt string `json:"verified_at,omitempty"`
}

// WhitelistStatus is the payload of a whitelist check.
type WhitelistStatus struct {
	Wallet      string `json:"wallet"`
	Whitelisted bool   `json:"whitelisted"`
	Position    int    `json:"position,omitempty"`
}

// KOLMetrics is the payload of a KOL metrics fetch.
type KOLMetrics struct {
	Wallet         string  `json:"wallet"`
	Followers      int64   `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	Rank           int     `json:"rank"`
}

// TransferRequest describes a token transfer.
type TransferRequest struct {
	From   string  `json:"from" validate:"required,wallet"`
	To     string  `json:"to" validate:"required,wallet"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Memo   string  `json:"memo,omitempty"`
}

// TransferReceipt is the payload of a successful transfer.
type TransferReceipt struct {
	Signature string `json:"signature"`
	Slot      int64  `json:"slot"`
}

// GetVerificationStatus fetches the verification status of a wallet.
// Invalid addresses short-circuit with INVALID_WALLET before any
// network activity.
func (c *Client) GetVerificationStatus(ctx context.Context, walletAddr string) *Response {
	if !wallet.IsValid(walletAddr) {
		return failure(CodeInvalidWallet, "invalid wallet address", walletAddr)
	}

	return c.Execute(ctx, &Request{
		Method:   http.MethodGet,
		Endpoint: endpointVerification,
		Params:   map[string]any{"wallet": walletAddr},
	})
}

// CheckWhitelist checks whether a wallet is whitelisted.
func (c *Client) CheckWhitelist(ctx context.Context, walletAddr string) *Response {
	if !wallet.IsValid(walletAddr) {
		return failure(CodeInvalidWallet, "invalid wallet address", walletAddr)
	}

	return c.Execute(ctx, &Request{
		Method:   http.MethodPost,
		Endpoint: endpointWhitelistCheck,
		Body:     map[string]any{"wallet": walletAddr},
	})
}

// GetKOLMetrics fetches engagement metrics for a KOL wallet.
func (c *Client) GetKOLMetrics(ctx context.Context, walletAddr string) *Response {
	if !wallet.IsValid(walletAddr) {
		return failure(CodeInvalidWallet, "invalid wallet address", walletAddr)
	}

	return c.Execute(ctx, &Request{
		Method:   http.MethodGet,
		Endpoint: endpointKOLMetrics,
		Params:   map[string]any{"wallet": walletAddr},
	})
}

// GetKOLLeaderboard fetches one page of the KOL leaderboard. The
// envelope's pagination field describes the page window.
func (c *Client) GetKOLLeaderboard(ctx context.Context, page, perPage int) *Response {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	return c.Execute(ctx, &Request{
		Method:   http.MethodGet,
		Endpoint: endpointKOLLeaderboard,
		Params:   map[string]any{"page": page, "per_page": perPage},
	})
}

// Transfer executes a token transfer. Mutating operations are never
// served from or stored in cache. A successful transfer emits
// EventTransferCompleted on the client's event bus.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) *Response {
	if resp := validateTransfer(req); resp != nil {
		return resp
	}

	resp := c.ExecuteWithOptions(ctx, &Request{
		Method:   http.MethodPost,
		Endpoint: endpointTokenTransfer,
		Body:     req,
	}, ExecOptions{UseCache: false})

	if resp.Success {
		c.events.Emit(EventTransferCompleted, map[string]any{
			"from":   req.From,
			"to":     req.To,
			"amount": req.Amount,
		})
	}

	return resp
}

// validateTransfer maps struct validation failures onto the envelope
// taxonomy: address fields to INVALID_WALLET, amount to INVALID_AMOUNT.
// Returns nil when the request is structurally valid.
func validateTransfer(req TransferRequest) *Response {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return failure(CodeRequestFailed, "transfer validation failed", err.Error())
	}

	for _, fe := range fieldErrs {
		if fe.Field() == "From" || fe.Field() == "To" {
			return failure(CodeInvalidWallet, "invalid wallet address", fe.Field())
		}
	}
	return failure(CodeInvalidAmount, "transfer amount must be greater than zero", req.Amount)
}
