package broker

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"midas/pkg/errors"
	"midas/pkg/logger"
)

// SandboxClient serves fixed demo data when no live brokerage token is
// configured. It keeps the whole pipeline exercisable end to end,
// including the foreign-currency cash row that aggregation must ignore.
type SandboxClient struct {
	log *logger.Logger
}

var _ Client = (*SandboxClient)(nil)

// NewSandboxClient creates the demo client.
func NewSandboxClient() *SandboxClient {
	return &SandboxClient{log: logger.Get().With("component", "sandbox_broker")}
}

// ListAccounts returns the demo account set.
func (c *SandboxClient) ListAccounts(ctx context.Context) ([]RawAccount, error) {
	return []RawAccount{
		{ID: "sandbox-001", Name: "Sandbox Brokerage", Type: "ACCOUNT_TYPE_BROKER", Status: "ACTIVE"},
		{ID: "sandbox-002", Name: "Sandbox IIS", Type: "ACCOUNT_TYPE_TINKOFF_IIS", Status: "ACTIVE"},
	}, nil
}

// GetPositions returns fixed holdings per demo account.
func (c *SandboxClient) GetPositions(ctx context.Context, accountID string) ([]RawPosition, error) {
	switch accountID {
	case "sandbox-001":
		return []RawPosition{
			{FIGI: "BBG004730N88", Ticker: "SBER", Name: "Sberbank", InstrumentType: "share", Quantity: 100, CurrentPrice: dec("300"), AveragePrice: dec("250")},
			{FIGI: "BBG004730RP0", Ticker: "GAZP", Name: "Gazprom", InstrumentType: "share", Quantity: 50, CurrentPrice: dec("170"), AveragePrice: dec("160")},
			{FIGI: "BBG004730ZJ9", Ticker: "VTBR", Name: "VTB", InstrumentType: "share", Quantity: 200, CurrentPrice: dec("0.03"), AveragePrice: dec("0.025")},
			// Sold out position kept by the API with zero balance.
			{FIGI: "BBG004731354", Ticker: "ROSN", Name: "Rosneft", InstrumentType: "share", Quantity: 0, CurrentPrice: dec("580"), AveragePrice: dec("540")},
		}, nil
	case "sandbox-002":
		return []RawPosition{
			{FIGI: "SU26238RMFS4", Ticker: "SU26238", Name: "OFZ-26238", InstrumentType: "bond", Quantity: 10, CurrentPrice: dec("1010"), AveragePrice: dec("1000")},
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "sandbox account %s", accountID)
	}
}

// GetCashBalances returns per-currency cash. The USD row is intentional:
// consolidation counts base-currency cash only.
func (c *SandboxClient) GetCashBalances(ctx context.Context, accountID string) ([]CashBalance, error) {
	switch accountID {
	case "sandbox-001":
		return []CashBalance{
			{Currency: "rub", Amount: dec("10000")},
			{Currency: "usd", Amount: dec("500")},
		}, nil
	case "sandbox-002":
		return []CashBalance{
			{Currency: "rub", Amount: dec("5000")},
		}, nil
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "sandbox account %s", accountID)
	}
}

// GetUserInfo returns demo metadata with no premium flag and no explicit
// tariff, leaving detection to the account-type mix.
func (c *SandboxClient) GetUserInfo(ctx context.Context) (UserInfo, error) {
	return UserInfo{}, nil
}

// PlaceOrder acknowledges every well-formed order with a generated ID.
func (c *SandboxClient) PlaceOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if req.Quantity <= 0 {
		return Order{}, errors.Wrap(errors.ErrOrderRejected, "non-positive quantity")
	}
	direction := strings.ToLower(req.Direction)
	if direction != "buy" && direction != "sell" {
		return Order{}, errors.Wrapf(errors.ErrOrderRejected, "unknown direction %q", req.Direction)
	}

	orderID := uuid.NewString()
	c.log.Infof("sandbox order accepted: %s %s x%d (%s)", direction, req.Ticker, req.Quantity, orderID)
	return Order{OrderID: orderID, Status: "FILL"}, nil
}

// Close is a no-op for the sandbox.
func (c *SandboxClient) Close() error {
	return nil
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}
