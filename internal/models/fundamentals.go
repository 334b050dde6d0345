package models

import "time"

// FinancialMetrics is a ratio snapshot for one ticker and period.
// Missing values are nil; scoring treats them as absent rather than
// zero.
type FinancialMetrics struct {
	Ticker          string     `json:"ticker"`
	ReportPeriod    string     `json:"report_period"`
	Period          string     `json:"period"`
	MarketCap       *float64   `json:"market_cap"`
	EnterpriseValue *float64   `json:"enterprise_value"`
	PriceToEarnings *float64   `json:"price_to_earnings_ratio"`
	EVToEBIT        *float64   `json:"ev_to_ebit"`
	DebtToEquity    *float64   `json:"debt_to_equity"`
	ReturnOnEquity  *float64   `json:"return_on_equity"`
	OperatingMargin *float64   `json:"operating_margin"`
	EarningsGrowth  *float64   `json:"earnings_growth"`
	RevenueGrowth   *float64   `json:"revenue_growth"`
	FetchedAt       time.Time  `json:"fetched_at"`
}

// LineItem is one reporting period of statement line items, fetched
// newest first. All values are optional.
type LineItem struct {
	Ticker                string   `json:"ticker"`
	ReportPeriod          string   `json:"report_period"`
	Revenue               *float64 `json:"revenue"`
	NetIncome             *float64 `json:"net_income"`
	EBIT                  *float64 `json:"ebit"`
	OperatingMargin       *float64 `json:"operating_margin"`
	FreeCashFlow          *float64 `json:"free_cash_flow"`
	TotalDebt             *float64 `json:"total_debt"`
	CashAndEquivalents    *float64 `json:"cash_and_equivalents"`
	TotalAssets           *float64 `json:"total_assets"`
	TotalLiabilities      *float64 `json:"total_liabilities"`
	ReturnOnEquity        *float64 `json:"return_on_equity"`
	Dividends             *float64 `json:"dividends_and_other_cash_distributions"`
	ShareIssuance         *float64 `json:"issuance_or_purchase_of_equity_shares"`
	OutstandingShares     *float64 `json:"outstanding_shares"`
}

// InsiderTrade is a single reported insider transaction. Positive
// TransactionShares are purchases, negative are sales.
type InsiderTrade struct {
	Ticker            string   `json:"ticker"`
	Name              string   `json:"name"`
	TransactionShares *float64 `json:"transaction_shares"`
	TransactionDate   string   `json:"transaction_date"`
}

// CompanyNews is one news headline with a coarse sentiment tag.
type CompanyNews struct {
	Ticker    string    `json:"ticker"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Sentiment string    `json:"sentiment"`
	Date      time.Time `json:"date"`
}

// Price is one daily OHLC bar.
type Price struct {
	Ticker string    `json:"ticker"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Time   time.Time `json:"time"`
}
