package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// DefaultScreenerURL is the Screener.in host.
const DefaultScreenerURL = "https://www.screener.in"

// Screener scrapes headline ratios from Screener.in company pages.
type Screener struct {
	client  *Client
	cache   *Cache
	baseURL string
}

// NewScreener creates a Screener.in source. An empty baseURL uses
// DefaultScreenerURL.
func NewScreener(client *Client, baseURL string, ttl time.Duration) *Screener {
	if baseURL == "" {
		baseURL = DefaultScreenerURL
	}
	return &Screener{
		client:  client,
		cache:   NewCache(ttl),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the data source name.
func (s *Screener) Name() string { return "Screener.in" }

// Ratios is the scraped top-ratios panel.
type Ratios struct {
	Fundamentals models.FundamentalSnapshot
	Price        float64 // ₹
	MarketCapCr  float64 // ₹ crore
	BookValue    float64 // ₹ per share
}

// GetRatios returns the headline ratios for ticker. The consolidated page
// is tried first, then the standalone one.
func (s *Screener) GetRatios(ctx context.Context, ticker string) (*Ratios, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}

	return cached(s.cache, "ratios:"+symbol, func() (*Ratios, error) {
		doc, err := s.fetchPage(ctx, symbol)
		if err != nil {
			return nil, err
		}
		r := parseTopRatios(doc)
		if r == nil {
			return nil, fmt.Errorf("%w: screener.in %s", ErrNoData, symbol)
		}
		return r, nil
	})
}

func (s *Screener) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	headers := map[string]string{"Accept": "text/html"}

	url := fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, symbol)
	body, err := s.client.get(ctx, url, headers)
	if err != nil {
		var httpErr *ErrHTTP
		if !errors.As(err, &httpErr) {
			return nil, fmt.Errorf("screener.in %s: %w", symbol, err)
		}
		url = fmt.Sprintf("%s/company/%s/", s.baseURL, symbol)
		body, err = s.client.get(ctx, url, headers)
		if err != nil {
			if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
				return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
			}
			return nil, fmt.Errorf("screener.in %s: %w", symbol, err)
		}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse screener HTML: %w", err)
	}
	return doc, nil
}

// parseTopRatios reads the "#top-ratios li" list. It returns nil when the
// list is missing.
func parseTopRatios(doc *goquery.Document) *Ratios {
	items := doc.Find("#top-ratios li")
	if items.Length() == 0 {
		return nil
	}

	r := &Ratios{}
	f := &r.Fundamentals
	items.Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").Text())
		val := parseScreenerNumber(sel.Find(".number").First().Text())

		switch {
		case strings.Contains(name, "Market Cap"):
			r.MarketCapCr = val
		case strings.Contains(name, "Current Price"):
			r.Price = val
		case strings.Contains(name, "Stock P/E"):
			f.PE = val
		case strings.Contains(name, "Book Value"):
			r.BookValue = val
		case strings.Contains(name, "Price to book"):
			f.PB = val
		case strings.Contains(name, "Dividend Yield"):
			f.DividendYield = val
		case strings.Contains(name, "ROCE"):
			f.ROCE = val
		case strings.Contains(name, "ROE"):
			f.ROE = val
		case strings.Contains(name, "Debt to equity"):
			f.DebtEquity = val
		}
	})

	if f.PB == 0 && r.BookValue > 0 && r.Price > 0 {
		f.PB = math.Round(r.Price/r.BookValue*100) / 100
	}
	f.MarketCap = models.TierFromMarketCap(r.MarketCapCr, r.Price)
	return r
}

// parseScreenerNumber strips the rupee sign, Indian digit grouping, "%" and
// the "Cr." unit. Amounts stay in the unit the page shows them in.
func parseScreenerNumber(s string) float64 {
	s = strings.NewReplacer(",", "", "%", "", "₹", "", "Cr.", "", "Cr", "").Replace(s)
	s = strings.TrimSpace(s)
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val
}
