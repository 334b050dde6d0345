package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stock-scout/internal/models"
)

const providerName = "financial_datasets"

// FinancialDatasetsClient implements Provider against the Financial
// Datasets API.
type FinancialDatasetsClient struct {
	httpClient *RateLimitedHTTPClient
	cache      *SnapshotCache
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewFinancialDatasetsClient creates a new Financial Datasets API client
func NewFinancialDatasetsClient(httpClient *RateLimitedHTTPClient, cache *SnapshotCache, baseURL, apiKey string, logger *logrus.Logger) *FinancialDatasetsClient {
	if baseURL == "" {
		baseURL = "https://api.financialdatasets.ai"
	}
	return &FinancialDatasetsClient{
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// wire shapes; monetary values arrive as JSON numbers and are decoded
// through decimal to avoid float drift before rounding.
type metricsResponse struct {
	FinancialMetrics []wireMetrics `json:"financial_metrics"`
}

type wireMetrics struct {
	Ticker          string   `json:"ticker"`
	ReportPeriod    string   `json:"report_period"`
	Period          string   `json:"period"`
	MarketCap       *float64 `json:"market_cap"`
	EnterpriseValue *float64 `json:"enterprise_value"`
	PriceToEarnings *float64 `json:"price_to_earnings_ratio"`
	EVToEBIT        *float64 `json:"ev_to_ebit"`
	DebtToEquity    *float64 `json:"debt_to_equity"`
	ReturnOnEquity  *float64 `json:"return_on_equity"`
	OperatingMargin *float64 `json:"operating_margin"`
	EarningsGrowth  *float64 `json:"earnings_growth"`
	RevenueGrowth   *float64 `json:"revenue_growth"`
}

type lineItemsResponse struct {
	Financials []models.LineItem `json:"financials"`
}

type marketCapResponse struct {
	CompanyFacts struct {
		MarketCap *float64 `json:"market_cap"`
	} `json:"company_facts"`
}

type pricesResponse struct {
	Prices []wirePrice `json:"prices"`
}

type wirePrice struct {
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
	Time   string          `json:"time"`
}

type insiderTradesResponse struct {
	InsiderTrades []models.InsiderTrade `json:"insider_trades"`
}

type newsResponse struct {
	News []wireNews `json:"news"`
}

type wireNews struct {
	Ticker    string `json:"ticker"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Sentiment string `json:"sentiment"`
	Date      string `json:"date"`
}

// FinancialMetrics retrieves ratio snapshots, newest first
func (c *FinancialDatasetsClient) FinancialMetrics(ctx context.Context, ticker string, limit int) ([]*models.FinancialMetrics, error) {
	cacheKey := fmt.Sprintf("metrics:%s:%d", ticker, limit)
	if cached, ok := CacheGet[[]*models.FinancialMetrics](c.cache, cacheKey); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/financial-metrics/?ticker=%s&period=ttm&limit=%d", c.baseURL, url.QueryEscape(ticker), limit)

	var parsed metricsResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	fetched := time.Now().UTC()
	out := make([]*models.FinancialMetrics, 0, len(parsed.FinancialMetrics))
	for _, m := range parsed.FinancialMetrics {
		out = append(out, &models.FinancialMetrics{
			Ticker:          m.Ticker,
			ReportPeriod:    m.ReportPeriod,
			Period:          m.Period,
			MarketCap:       m.MarketCap,
			EnterpriseValue: m.EnterpriseValue,
			PriceToEarnings: m.PriceToEarnings,
			EVToEBIT:        m.EVToEBIT,
			DebtToEquity:    m.DebtToEquity,
			ReturnOnEquity:  m.ReturnOnEquity,
			OperatingMargin: m.OperatingMargin,
			EarningsGrowth:  m.EarningsGrowth,
			RevenueGrowth:   m.RevenueGrowth,
			FetchedAt:       fetched,
		})
	}

	c.cache.Set(cacheKey, out)
	return out, nil
}

// LineItems retrieves statement line items, newest first
func (c *FinancialDatasetsClient) LineItems(ctx context.Context, ticker string, limit int) ([]*models.LineItem, error) {
	cacheKey := fmt.Sprintf("line_items:%s:%d", ticker, limit)
	if cached, ok := CacheGet[[]*models.LineItem](c.cache, cacheKey); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/financials/?ticker=%s&period=annual&limit=%d", c.baseURL, url.QueryEscape(ticker), limit)

	var parsed lineItemsResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	out := make([]*models.LineItem, 0, len(parsed.Financials))
	for i := range parsed.Financials {
		item := parsed.Financials[i]
		item.Ticker = ticker
		out = append(out, &item)
	}

	c.cache.Set(cacheKey, out)
	return out, nil
}

// MarketCap retrieves the current market capitalization
func (c *FinancialDatasetsClient) MarketCap(ctx context.Context, ticker string) (*float64, error) {
	cacheKey := fmt.Sprintf("market_cap:%s", ticker)
	if cached, ok := CacheGet[*float64](c.cache, cacheKey); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/company/facts/?ticker=%s", c.baseURL, url.QueryEscape(ticker))

	var parsed marketCapResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, parsed.CompanyFacts.MarketCap)
	return parsed.CompanyFacts.MarketCap, nil
}

// Prices retrieves daily bars for the date range, oldest first
func (c *FinancialDatasetsClient) Prices(ctx context.Context, ticker string, start, end time.Time) ([]*models.Price, error) {
	endpoint := fmt.Sprintf(
		"%s/prices/?ticker=%s&interval=day&interval_multiplier=1&start_date=%s&end_date=%s",
		c.baseURL, url.QueryEscape(ticker), start.Format("2006-01-02"), end.Format("2006-01-02"),
	)

	var parsed pricesResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	out := make([]*models.Price, 0, len(parsed.Prices))
	for _, p := range parsed.Prices {
		ts, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			if ts, err = time.Parse("2006-01-02", p.Time); err != nil {
				c.logger.WithField("ticker", ticker).Warnf("Skipping bar with unparseable time %q", p.Time)
				continue
			}
		}
		out = append(out, &models.Price{
			Ticker: ticker,
			Open:   p.Open.InexactFloat64(),
			High:   p.High.InexactFloat64(),
			Low:    p.Low.InexactFloat64(),
			Close:  p.Close.Round(4).InexactFloat64(),
			Volume: p.Volume,
			Time:   ts,
		})
	}

	return out, nil
}

// CurrentPrice retrieves the latest close over the trailing week
func (c *FinancialDatasetsClient) CurrentPrice(ctx context.Context, ticker string) (float64, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)

	prices, err := c.Prices(ctx, ticker, start, end)
	if err != nil {
		return 0, err
	}
	if len(prices) == 0 {
		return 0, NewProviderError(providerName, ErrCodeNotFound, "no recent bars for "+ticker, ErrNoPriceData)
	}

	return prices[len(prices)-1].Close, nil
}

// InsiderTrades retrieves recent insider transactions
func (c *FinancialDatasetsClient) InsiderTrades(ctx context.Context, ticker string, limit int) ([]*models.InsiderTrade, error) {
	endpoint := fmt.Sprintf("%s/insider-trades/?ticker=%s&limit=%d", c.baseURL, url.QueryEscape(ticker), limit)

	var parsed insiderTradesResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	out := make([]*models.InsiderTrade, 0, len(parsed.InsiderTrades))
	for i := range parsed.InsiderTrades {
		trade := parsed.InsiderTrades[i]
		trade.Ticker = ticker
		out = append(out, &trade)
	}

	return out, nil
}

// CompanyNews retrieves recent headlines with sentiment tags
func (c *FinancialDatasetsClient) CompanyNews(ctx context.Context, ticker string, limit int) ([]*models.CompanyNews, error) {
	endpoint := fmt.Sprintf("%s/news/?ticker=%s&limit=%d", c.baseURL, url.QueryEscape(ticker), limit)

	var parsed newsResponse
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, err
	}

	out := make([]*models.CompanyNews, 0, len(parsed.News))
	for _, n := range parsed.News {
		date, err := time.Parse(time.RFC3339, n.Date)
		if err != nil {
			date, _ = time.Parse("2006-01-02", n.Date)
		}
		out = append(out, &models.CompanyNews{
			Ticker:    ticker,
			Title:     n.Title,
			Source:    n.Source,
			Sentiment: n.Sentiment,
			Date:      date,
		})
	}

	return out, nil
}

// Name returns the provider name
func (c *FinancialDatasetsClient) Name() string {
	return providerName
}

// getJSON executes an authenticated GET and decodes the JSON body
func (c *FinancialDatasetsClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return NewProviderError(providerName, ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(providerName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewProviderError(providerName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewProviderError(providerName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return NewProviderError(providerName, ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewProviderError(providerName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(providerName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return nil
}
