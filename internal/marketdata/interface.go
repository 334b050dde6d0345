package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/stock-scout/internal/models"
)

// Provider defines the interface for fetching fundamentals, prices and
// sentiment data from external vendors. Any method may return empty
// results for tickers the vendor has no data on; callers degrade
// gracefully rather than failing.
type Provider interface {
	// FinancialMetrics retrieves ratio snapshots, newest first.
	FinancialMetrics(ctx context.Context, ticker string, limit int) ([]*models.FinancialMetrics, error)

	// LineItems retrieves statement line items, newest first.
	LineItems(ctx context.Context, ticker string, limit int) ([]*models.LineItem, error)

	// MarketCap retrieves the current market capitalization, nil when
	// unavailable.
	MarketCap(ctx context.Context, ticker string) (*float64, error)

	// Prices retrieves daily bars for the date range, oldest first.
	Prices(ctx context.Context, ticker string, start, end time.Time) ([]*models.Price, error)

	// CurrentPrice retrieves the latest close.
	CurrentPrice(ctx context.Context, ticker string) (float64, error)

	// InsiderTrades retrieves recent insider transactions.
	InsiderTrades(ctx context.Context, ticker string, limit int) ([]*models.InsiderTrade, error)

	// CompanyNews retrieves recent headlines with sentiment tags.
	CompanyNews(ctx context.Context, ticker string, limit int) ([]*models.CompanyNews, error)

	// Name returns the provider name.
	Name() string
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // provider name
	Code     string // error code (e.g. "rate_limit_exceeded")
	Message  string
	Err      error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoPriceData          = errors.New("no price data available")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
