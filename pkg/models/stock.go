// Package models defines the core data structures used throughout IndiQuant.
package models

import (
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar of price data.
// A []OHLCV is a price series, oldest bar first.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Quote is the current price of a stock together with its daily move.
type Quote struct {
	LastPrice float64 `json:"last_price"`
	ChangePct float64 `json:"change_pct"` // daily % change
}

// MarketCapTier buckets a company by market capitalisation.
type MarketCapTier string

const (
	LargeCap   MarketCapTier = "Large Cap"
	MidCap     MarketCapTier = "Mid Cap"
	SmallCap   MarketCapTier = "Small Cap"
	PennyStock MarketCapTier = "Penny Stock"
	UnknownCap MarketCapTier = "Unknown"
)

// ParseMarketCapTier accepts the common spellings ("Large", "large_cap",
// "Large Cap") and returns UnknownCap for anything else.
func ParseMarketCapTier(s string) MarketCapTier {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("_", " ", "-", " ").Replace(k)
	switch k {
	case "large", "large cap", "largecap":
		return LargeCap
	case "mid", "mid cap", "midcap":
		return MidCap
	case "small", "small cap", "smallcap":
		return SmallCap
	case "penny", "penny stock":
		return PennyStock
	}
	return UnknownCap
}

// TierFromMarketCap classifies a market cap given in crores of rupees.
// A share price under ₹10 always counts as a penny stock.
func TierFromMarketCap(capCr, price float64) MarketCapTier {
	switch {
	case price > 0 && price < 10:
		return PennyStock
	case capCr >= 20000:
		return LargeCap
	case capCr >= 5000:
		return MidCap
	case capCr >= 100:
		return SmallCap
	case capCr > 0:
		return PennyStock
	}
	return UnknownCap
}

// FundamentalSnapshot holds the valuation and balance sheet ratios used for
// scoring. A zero field means the value is unknown, never that it is good.
type FundamentalSnapshot struct {
	PE            float64       `json:"pe"`
	PB            float64       `json:"pb"`
	ROE           float64       `json:"roe"`  // percentage
	ROCE          float64       `json:"roce"` // percentage
	DebtEquity    float64       `json:"debt_equity"`
	DividendYield float64       `json:"dividend_yield"` // percentage
	MarketCap     MarketCapTier `json:"market_cap,omitempty"`
}

// Tier returns the market cap tier, treating an empty value as unknown.
func (f FundamentalSnapshot) Tier() MarketCapTier {
	if f.MarketCap == "" {
		return UnknownCap
	}
	return f.MarketCap
}
