package utils

import (
	"regexp"
	"strings"
)

// Common NSE ticker aliases and normalizations.
var tickerAliases = map[string]string{
	"RELIANCE":      "RELIANCE",
	"RIL":           "RELIANCE",
	"TCS":           "TCS",
	"INFOSYS":       "INFY",
	"INFY":          "INFY",
	"HDFCBANK":      "HDFCBANK",
	"HDFC BANK":     "HDFCBANK",
	"ICICIBANK":     "ICICIBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBIN":          "SBIN",
	"SBI":           "SBIN",
	"BHARTIARTL":    "BHARTIARTL",
	"AIRTEL":        "BHARTIARTL",
	"BAJFINANCE":    "BAJFINANCE",
	"BAJAJ FIN":     "BAJFINANCE",
	"ITC":           "ITC",
	"LT":            "LT",
	"L&T":           "LT",
	"TATAMOTORS":    "TATAMOTORS",
	"TATA MOTORS":   "TATAMOTORS",
	"TATASTEEL":     "TATASTEEL",
	"TATA STEEL":    "TATASTEEL",
	"WIPRO":         "WIPRO",
	"HCLTECH":       "HCLTECH",
	"HCL TECH":      "HCLTECH",
	"MARUTI":        "MARUTI",
	"KOTAKBANK":     "KOTAKBANK",
	"KOTAK":         "KOTAKBANK",
	"AXISBANK":      "AXISBANK",
	"AXIS BANK":     "AXISBANK",
	"SUNPHARMA":     "SUNPHARMA",
	"SUN PHARMA":    "SUNPHARMA",
	"ASIANPAINT":    "ASIANPAINT",
	"ASIAN PAINTS":  "ASIANPAINT",
	"TITAN":         "TITAN",
	"NESTLEIND":     "NESTLEIND",
	"NESTLE":        "NESTLEIND",
	"ULTRACEMCO":    "ULTRACEMCO",
	"ULTRATECH":     "ULTRACEMCO",
	"POWERGRID":     "POWERGRID",
	"NTPC":          "NTPC",
	"TECHM":         "TECHM",
	"TECH MAHINDRA": "TECHM",
	"M&M":           "M&M",
	"MAHINDRA":      "M&M",
	"ADANIENT":      "ADANIENT",
	"ADANI":         "ADANIENT",
	"HINDUNILVR":    "HINDUNILVR",
	"HUL":           "HINDUNILVR",
	"DRREDDY":       "DRREDDY",
	"CIPLA":         "CIPLA",
	"COALINDIA":     "COALINDIA",
	"COAL INDIA":    "COALINDIA",
	"ONGC":          "ONGC",
	"IOC":           "IOC",
	"BPCL":          "BPCL",
}

// NSE index tickers.
var indexTickers = map[string]string{
	"NIFTY":       "NIFTY 50",
	"NIFTY50":     "NIFTY 50",
	"NIFTY 50":    "NIFTY 50",
	"BANKNIFTY":   "NIFTY BANK",
	"NIFTYBANK":   "NIFTY BANK",
	"NIFTY BANK":  "NIFTY BANK",
	"FINNIFTY":    "NIFTY FIN SERVICE",
	"NIFTYIT":     "NIFTY IT",
	"NIFTY IT":    "NIFTY IT",
	"NIFTYMIDCAP": "NIFTY MIDCAP 50",
	"SENSEX":      "SENSEX",
}

// NormalizeTicker normalizes a user-input ticker to the canonical NSE format.
// It handles aliases, uppercasing, whitespace and exchange suffixes.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")
	ticker = strings.TrimSuffix(ticker, ".NS")
	ticker = strings.TrimSuffix(ticker, ".BO")

	if idx, ok := indexTickers[ticker]; ok {
		return idx
	}
	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// IsIndex checks if the ticker is an index (not a stock).
func IsIndex(ticker string) bool {
	ticker = NormalizeTicker(ticker)
	for _, v := range indexTickers {
		if v == ticker {
			return true
		}
	}
	return false
}

// NSE symbols are upper-case letters and digits, optionally with & or -.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9&-]{0,19}$`)

// ValidSymbol reports whether a normalized ticker looks like an NSE equity
// symbol. Indices are not equities.
func ValidSymbol(ticker string) bool {
	return symbolPattern.MatchString(ticker) && !IsIndex(ticker)
}
