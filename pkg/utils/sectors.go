package utils

import "sort"

// nseSectors maps an NSE sector to its major constituents.
var nseSectors = map[string][]string{
	"IT":            {"TCS", "INFY", "WIPRO", "HCLTECH", "TECHM", "LTIM", "MPHASIS", "COFORGE", "PERSISTENT"},
	"Banking":       {"HDFCBANK", "ICICIBANK", "KOTAKBANK", "SBIN", "AXISBANK", "INDUSINDBK", "BANDHANBNK", "FEDERALBNK"},
	"NBFC":          {"BAJFINANCE", "BAJAJFINSV", "CHOLAFIN", "MUTHOOTFIN", "M&MFIN", "LICHSGFIN"},
	"Pharma":        {"SUNPHARMA", "DRREDDY", "CIPLA", "DIVISLAB", "BIOCON", "AUROPHARMA", "LUPIN", "TORNTPHARM"},
	"Auto":          {"MARUTI", "TATAMOTORS", "M&M", "BAJAJ-AUTO", "HEROMOTOCO", "ASHOKLEY", "EICHERMOT"},
	"Oil & Gas":     {"RELIANCE", "ONGC", "IOC", "BPCL", "HINDPETRO", "GAIL", "PETRONET"},
	"Metal":         {"TATASTEEL", "HINDALCO", "JSWSTEEL", "VEDL", "NATIONALUM", "COALINDIA", "NMDC"},
	"FMCG":          {"HINDUNILVR", "ITC", "NESTLEIND", "BRITANNIA", "DABUR", "GODREJCP", "MARICO", "COLPAL"},
	"Cement":        {"ULTRACEMCO", "GRASIM", "SHREECEM", "AMBUJACEM", "ACC", "DALMIA", "RAMCOCEM"},
	"Telecom":       {"BHARTIARTL", "IDEA", "TATACOMM"},
	"Power":         {"NTPC", "POWERGRID", "TATAPOWER", "ADANIPOWER", "NHPC", "SJVN"},
	"Infra":         {"LT", "ADANIENT", "ADANIPORTS", "IRB", "NBCC", "KEC"},
	"Insurance":     {"SBILIFE", "HDFCLIFE", "ICICIPRULI", "STARHEALTH", "NIACL"},
	"Realty":        {"DLF", "GODREJPROP", "OBEROIRLTY", "PHOENIXLTD", "PRESTIGE", "BRIGADE"},
	"Capital Goods": {"ABB", "SIEMENS", "HAL", "BEL", "BHEL", "CUMMINSIND"},
}

// tickerSector is the reverse index of nseSectors.
var tickerSector = func() map[string]string {
	m := make(map[string]string)
	for sector, tickers := range nseSectors {
		for _, t := range tickers {
			m[t] = sector
		}
	}
	return m
}()

// SectorFor returns the sector of an NSE ticker, or "" when unknown.
func SectorFor(ticker string) string {
	return tickerSector[NormalizeTicker(ticker)]
}

// SectorPeers returns the other tickers of the same sector, sorted.
func SectorPeers(ticker string) []string {
	t := NormalizeTicker(ticker)
	sector := tickerSector[t]
	if sector == "" {
		return nil
	}
	peers := make([]string, 0, len(nseSectors[sector])-1)
	for _, p := range nseSectors[sector] {
		if p != t {
			peers = append(peers, p)
		}
	}
	sort.Strings(peers)
	return peers
}

// Sectors lists the known sector names, sorted.
func Sectors() []string {
	out := make([]string, 0, len(nseSectors))
	for s := range nseSectors {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
