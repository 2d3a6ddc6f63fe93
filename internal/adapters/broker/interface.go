package broker

import (
	"context"

	"github.com/shopspring/decimal"
)

// Client is the narrow contract the advisor core consumes from the
// brokerage. Connection handling, auth and pagination live behind it.
type Client interface {
	// ListAccounts returns all brokerage sub-accounts of the user.
	ListAccounts(ctx context.Context) ([]RawAccount, error)

	// GetPositions returns raw position records for one account.
	GetPositions(ctx context.Context, accountID string) ([]RawPosition, error)

	// GetCashBalances returns per-currency cash rows for one account.
	GetCashBalances(ctx context.Context, accountID string) ([]CashBalance, error)

	// GetUserInfo returns account-level metadata used for tariff detection.
	GetUserInfo(ctx context.Context) (UserInfo, error)

	// PlaceOrder submits a market order and returns the broker order ID.
	PlaceOrder(ctx context.Context, req OrderRequest) (Order, error)

	// Close releases the underlying connection.
	Close() error
}

// RawAccount is one brokerage sub-ledger as the API reports it.
type RawAccount struct {
	ID     string
	Name   string
	Type   string
	Status string
}

// RawPosition is one holding as the API reports it, before any
// reference-table enrichment.
type RawPosition struct {
	FIGI           string
	Ticker         string
	Name           string
	InstrumentType string
	Quantity       int64
	CurrentPrice   decimal.Decimal
	AveragePrice   decimal.Decimal
}

// CashBalance is one currency row of an account's money section.
type CashBalance struct {
	Currency string
	Amount   decimal.Decimal
}

// UserInfo carries the metadata the tariff heuristic inspects.
type UserInfo struct {
	PremiumStatus bool
	TariffCode    string
}

// OrderRequest describes a market order.
type OrderRequest struct {
	AccountID string
	Ticker    string
	Direction string // "buy" or "sell"
	Quantity  int64
}

// Order is the broker's acknowledgement of a placed order.
type Order struct {
	OrderID string
	Status  string
}
