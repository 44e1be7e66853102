package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/indiquant/internal/analysis/sentiment"
	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// News reads Indian market RSS feeds and labels each headline.
type News struct {
	client *Client
	feeds  []string
	cache  *Cache
	log    zerolog.Logger
}

// NewNews creates a news source over the given feed URLs.
func NewNews(client *Client, feeds []string, ttl time.Duration, log zerolog.Logger) *News {
	return &News{
		client: client,
		feeds:  feeds,
		cache:  NewCache(ttl),
		log:    log,
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Indian News" }

// GetMarketNews returns headlines from every feed, newest first. A feed
// that fails is logged and skipped; the call only fails when all do.
func (n *News) GetMarketNews(ctx context.Context) ([]models.NewsItem, error) {
	return cached(n.cache, "news:market", func() ([]models.NewsItem, error) {
		var (
			mu     sync.Mutex
			all    []models.NewsItem
			failed int
		)

		g, gctx := errgroup.WithContext(ctx)
		for _, feedURL := range n.feeds {
			g.Go(func() error {
				items, err := n.fetchFeed(gctx, feedURL)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed++
					n.log.Warn().Err(err).Str("feed", feedURL).Msg("news feed skipped")
					return nil
				}
				all = append(all, items...)
				return nil
			})
		}
		_ = g.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(n.feeds) > 0 && failed == len(n.feeds) {
			return nil, fmt.Errorf("%w: all %d news feeds failed", ErrNoData, failed)
		}

		sort.SliceStable(all, func(i, j int) bool {
			return all[i].PublishedAt.After(all[j].PublishedAt)
		})
		return sentiment.ClassifyNews(all), nil
	})
}

// GetStockNews returns up to limit headlines mentioning ticker.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	symbol := utils.NormalizeTicker(ticker)

	all, err := n.GetMarketNews(ctx)
	if err != nil {
		return nil, err
	}

	keywords := tickerKeywords(symbol)
	var filtered []models.NewsItem
	for _, a := range all {
		if matchesAny(a.Title+" "+a.Summary, keywords) {
			filtered = append(filtered, a)
			if limit > 0 && len(filtered) == limit {
				break
			}
		}
	}
	return filtered, nil
}

func (n *News) fetchFeed(ctx context.Context, feedURL string) ([]models.NewsItem, error) {
	body, err := n.client.get(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", feedURL, err)
	}

	source := feed.Title
	if source == "" {
		source = feedURL
	}
	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		it := models.NewsItem{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			it.PublishedAt = item.PublishedParsed.In(utils.IST)
		}
		items = append(items, it)
	}
	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// nameMap holds the names headlines use for common NSE symbols.
var nameMap = map[string][]string{
	"reliance":   {"reliance industries", "ril", "mukesh ambani"},
	"tcs":        {"tata consultancy"},
	"hdfcbank":   {"hdfc bank"},
	"infy":       {"infosys"},
	"icicibank":  {"icici bank"},
	"hindunilvr": {"hindustan unilever", "hul"},
	"sbin":       {"sbi", "state bank"},
	"bhartiartl": {"bharti airtel", "airtel"},
	"kotakbank":  {"kotak mahindra", "kotak bank"},
	"lt":         {"larsen", "l&t"},
	"bajfinance": {"bajaj finance"},
	"axisbank":   {"axis bank"},
	"maruti":     {"maruti suzuki"},
	"tatamotors": {"tata motors"},
	"tatasteel":  {"tata steel"},
	"hcltech":    {"hcl tech", "hcl technologies"},
	"asianpaint": {"asian paints"},
	"sunpharma":  {"sun pharma", "sun pharmaceutical"},
	"ongc":       {"oil and natural gas"},
}

// tickerKeywords returns search keywords for a ticker, e.g. "RELIANCE" gives
// ["reliance", "reliance industries", "ril", "mukesh ambani"].
func tickerKeywords(ticker string) []string {
	t := strings.ToLower(ticker)
	if t == "" {
		return nil
	}
	return append([]string{t}, nameMap[t]...)
}

// matchesAny reports whether text contains any keyword as a whole word.
func matchesAny(text string, keywords []string) bool {
	lower := " " + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '&':
			return r
		}
		return ' '
	}, strings.ToLower(text)) + " "
	for _, kw := range keywords {
		if strings.Contains(lower, " "+kw+" ") {
			return true
		}
	}
	return false
}
