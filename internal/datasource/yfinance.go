package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// DefaultYahooURL is the Yahoo Finance chart API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YFinance fetches daily bars and the latest quote from the Yahoo Finance
// chart API.
type YFinance struct {
	client  *Client
	cache   *Cache
	baseURL string
}

// NewYFinance creates a Yahoo Finance source. An empty baseURL uses
// DefaultYahooURL.
func NewYFinance(client *Client, baseURL string, ttl time.Duration) *YFinance {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YFinance{
		client:  client,
		cache:   NewCache(ttl),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PreviousClose      float64 `json:"previousClose"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Chart is the daily history of a stock together with its latest quote.
type Chart struct {
	Bars  []models.OHLCV
	Quote *models.Quote
}

// GetChart returns daily bars for the trailing period, e.g. "6mo" or "1y".
func (y *YFinance) GetChart(ctx context.Context, ticker, period string) (*Chart, error) {
	symbol := utils.NormalizeTicker(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}
	if period == "" {
		period = "6mo"
	}

	return cached(y.cache, "chart:"+symbol+":"+period, func() (*Chart, error) {
		url := fmt.Sprintf("%s/v8/finance/chart/%s.NS?range=%s&interval=1d", y.baseURL, symbol, period)
		body, err := y.client.get(ctx, url, map[string]string{"Accept": "application/json"})
		if err != nil {
			return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
		}
		defer body.Close()

		var resp yfChartResponse
		if err := json.NewDecoder(body).Decode(&resp); err != nil {
			return nil, fmt.Errorf("parse yfinance chart: %w", err)
		}
		if resp.Chart.Error != nil {
			return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
		}

		result := resp.Chart.Result[0]
		bars := parseYFCandles(result)
		if len(bars) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
		}
		return &Chart{Bars: bars, Quote: quoteFromChart(result.Meta, bars)}, nil
	})
}

// quoteFromChart derives the daily move from the previous close, falling
// back to the second to last bar.
func quoteFromChart(meta yfChartMeta, bars []models.OHLCV) *models.Quote {
	last := meta.RegularMarketPrice
	if last <= 0 {
		last = bars[len(bars)-1].Close
	}
	prev := meta.PreviousClose
	if prev <= 0 && len(bars) >= 2 {
		prev = bars[len(bars)-2].Close
	}
	q := &models.Quote{LastPrice: last}
	if prev > 0 {
		q.ChangePct = (last - prev) / prev * 100
	}
	return q
}

// parseYFCandles skips bars with a missing close; Yahoo pads holidays and
// the live session with nulls.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).In(utils.IST),
			Close:     *q.Close[i],
		}
		c.Open, c.High, c.Low = c.Close, c.Close, c.Close
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
