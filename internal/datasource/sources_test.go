package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/indiquant/pkg/models"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"TCS.NS","currency":"INR","regularMarketPrice":3550.0,"previousClose":3500.0},
  "timestamp":[1709251200,1709337600,1709596800],
  "indicators":{"quote":[{
    "open":[3400,3450,null],
    "high":[3460,3510,null],
    "low":[3390,3440,null],
    "close":[3450,3500,null],
    "volume":[1000,1200,null]
  }]}
}],"error":null}}`

func TestYFinanceGetChart(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v8/finance/chart/TCS.NS", r.URL.Path)
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	y := NewYFinance(NewClient(time.Second, 0), srv.URL, time.Minute)
	c, err := y.GetChart(context.Background(), "tcs.ns", "1y")
	require.NoError(t, err)

	require.Len(t, c.Bars, 2, "the null bar is dropped")
	assert.Equal(t, 3500.0, c.Bars[1].Close)
	assert.Equal(t, int64(1200), c.Bars[1].Volume)
	require.NotNil(t, c.Quote)
	assert.Equal(t, 3550.0, c.Quote.LastPrice)
	assert.InDelta(t, 1.4286, c.Quote.ChangePct, 1e-3)

	_, err = y.GetChart(context.Background(), "TCS", "1y")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from cache")
}

func TestYFinanceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYFinance(NewClient(time.Second, 0), srv.URL, 0)
	_, err := y.GetChart(context.Background(), "NOPE", "")
	assert.ErrorIs(t, err, ErrTickerNotFound)
}

const screenerHTML = `<html><body>
<ul id="top-ratios">
  <li><span class="name">Market Cap</span><span class="value">₹ <span class="number">12,84,000</span> Cr.</span></li>
  <li><span class="name">Current Price</span><span class="value">₹ <span class="number">3,550</span></span></li>
  <li><span class="name">High / Low</span><span class="value">₹ <span class="number">4,255</span> / <span class="number">3,311</span></span></li>
  <li><span class="name">Stock P/E</span><span class="value"><span class="number">26.8</span></span></li>
  <li><span class="name">Book Value</span><span class="value">₹ <span class="number">250</span></span></li>
  <li><span class="name">Dividend Yield</span><span class="value"><span class="number">1.58</span> %</span></li>
  <li><span class="name">ROCE</span><span class="value"><span class="number">64.3</span> %</span></li>
  <li><span class="name">ROE</span><span class="value"><span class="number">51.5</span> %</span></li>
  <li><span class="name">Face Value</span><span class="value">₹ <span class="number">1.00</span></span></li>
</ul></body></html>`

func TestScreenerGetRatiosFallsBackToStandalone(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/consolidated/") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(screenerHTML))
	}))
	defer srv.Close()

	s := NewScreener(NewClient(time.Second, 0), srv.URL, time.Minute)
	r, err := s.GetRatios(context.Background(), "tcs")
	require.NoError(t, err)

	assert.Equal(t, []string{"/company/TCS/consolidated/", "/company/TCS/"}, paths)
	assert.Equal(t, 1284000.0, r.MarketCapCr)
	assert.Equal(t, 3550.0, r.Price)
	f := r.Fundamentals
	assert.Equal(t, 26.8, f.PE)
	assert.Equal(t, 14.2, f.PB, "price over book value")
	assert.Equal(t, 51.5, f.ROE)
	assert.Equal(t, 64.3, f.ROCE)
	assert.Equal(t, 1.58, f.DividendYield)
	assert.Zero(t, f.DebtEquity, "not on the page means unknown")
	assert.Equal(t, models.LargeCap, f.MarketCap)
}

func TestScreenerMissingCompany(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := NewScreener(NewClient(time.Second, 0), srv.URL, 0)
	_, err := s.GetRatios(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrTickerNotFound)

	_, err = s.GetRatios(context.Background(), "NIFTY 50")
	assert.ErrorIs(t, err, ErrTickerNotFound, "indices are rejected before any request")
}

func TestScreenerPageWithoutRatios(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>login required</body></html>"))
	}))
	defer srv.Close()

	s := NewScreener(NewClient(time.Second, 0), srv.URL, 0)
	_, err := s.GetRatios(context.Background(), "TCS")
	assert.ErrorIs(t, err, ErrNoData)
}

func rssFeed(title string, items ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>`, title)
	for i, it := range items {
		fmt.Fprintf(&b, `<item><title>%s</title><link>https://example.com/%d</link>`+
			`<description>&lt;p&gt;Market &lt;b&gt;update&lt;/b&gt;&lt;/p&gt;</description>`+
			`<pubDate>Mon, 0%d Apr 2024 09:00:00 +0530</pubDate></item>`, it, i, i+1)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestNewsFanOutFilterAndClassify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/et", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed("ET Markets",
			"Infosys shares surge after record profit and strong growth",
			"Sensex ends flat")))
	})
	mux.HandleFunc("/mint", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed("Mint",
			"Nifty IT slumps; Infosys falls on weak guidance",
			"Infyniti Corp lists today")))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	n := NewNews(NewClient(time.Second, 0),
		[]string{srv.URL + "/et", srv.URL + "/mint", srv.URL + "/down"},
		time.Minute, zerolog.Nop())

	all, err := n.GetMarketNews(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Market update", all[0].Summary, "HTML is stripped")
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].PublishedAt.After(all[i-1].PublishedAt), "newest first")
	}

	infy, err := n.GetStockNews(context.Background(), "INFY", 0)
	require.NoError(t, err)
	require.Len(t, infy, 2, "Infyniti does not match infy as a whole word")
	labels := map[models.NewsSentiment]int{}
	for _, it := range infy {
		labels[it.Sentiment]++
	}
	assert.Equal(t, 1, labels[models.NewsPositive])
	assert.Equal(t, 1, labels[models.NewsNegative])

	limited, err := n.GetStockNews(context.Background(), "INFY", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestNewsAllFeedsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNews(NewClient(time.Second, 0), []string{srv.URL}, 0, zerolog.Nop())
	_, err := n.GetMarketNews(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestTickerKeywordsAndMatch(t *testing.T) {
	assert.Equal(t, []string{"lt", "larsen", "l&t"}, tickerKeywords("LT"))
	assert.Nil(t, tickerKeywords(""))

	assert.True(t, matchesAny("L&T bags big order", tickerKeywords("LT")))
	assert.False(t, matchesAny("Volt limited rallies", tickerKeywords("LT")))
	assert.True(t, matchesAny("Sun Pharma: USFDA nod", tickerKeywords("SUNPHARMA")))
}

func sampleBars() []models.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var bars []models.OHLCV
	for i := 0; i < 5; i++ {
		c := 100 + float64(i)
		bars = append(bars, models.OHLCV{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 1, High: c + 1, Low: c - 2, Close: c,
			Volume: int64(1000 * (i + 1)),
		})
	}
	return bars
}

func TestHistoryDirParquetAndJSON(t *testing.T) {
	dir := t.TempDir()
	h := NewHistoryDir(dir)

	require.NoError(t, h.Save("tcs", sampleBars()))
	got, err := h.Load("TCS")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 104.0, got[4].Close)
	assert.Equal(t, int64(5000), got[4].Volume)
	assert.True(t, got[0].Timestamp.Equal(sampleBars()[0].Timestamp))

	// JSON files are read when no parquet file exists; bars are re-sorted.
	bars := sampleBars()
	bars[0], bars[4] = bars[4], bars[0]
	require.NoError(t, WriteBars(filepath.Join(dir, "INFY.json"), bars))
	got, err = h.Load("infy")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got[0].Close)
	assert.Equal(t, 104.0, got[4].Close)

	_, err = h.Load("WIPRO")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = ReadBars(filepath.Join(dir, "bars.csv"))
	assert.Error(t, err)
}

type stubHistory struct {
	bars []models.OHLCV
	err  error
}

func (s stubHistory) Load(string) ([]models.OHLCV, error) { return s.bars, s.err }

type stubChart struct{ calls atomic.Int32 }

func (s *stubChart) GetChart(context.Context, string, string) (*Chart, error) {
	s.calls.Add(1)
	return &Chart{Bars: sampleBars(), Quote: &models.Quote{LastPrice: 105, ChangePct: 0.96}}, nil
}

type stubRatios struct {
	r   *Ratios
	err error
}

func (s stubRatios) GetRatios(context.Context, string) (*Ratios, error) { return s.r, s.err }

type stubNews struct{ items []models.NewsItem }

func (s stubNews) GetStockNews(context.Context, string, int) ([]models.NewsItem, error) {
	return s.items, nil
}

func TestAssemblerStoredHistoryWithoutCharts(t *testing.T) {
	a := &Assembler{
		History: stubHistory{bars: sampleBars()},
		Ratios: stubRatios{r: &Ratios{
			Fundamentals: models.FundamentalSnapshot{PE: 18, ROE: 22},
			Price:        999,
		}},
		News: stubNews{items: []models.NewsItem{{Title: "x", Sentiment: models.NewsPositive}}},
		Log:  zerolog.Nop(),
	}

	in, err := a.Assemble(context.Background(), "reliance.ns")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", in.Ticker)
	assert.Len(t, in.History, 5)
	require.NotNil(t, in.Quote)
	assert.Equal(t, 104.0, in.Quote.LastPrice, "quote comes from the last stored bar")
	assert.InDelta(t, 0.9709, in.Quote.ChangePct, 1e-3)
	assert.Equal(t, 18.0, in.Fundamentals.PE)
	assert.Len(t, in.News, 1)
}

func TestAssemblerFallsBackAndTolerates(t *testing.T) {
	charts := &stubChart{}
	a := &Assembler{
		History: stubHistory{err: ErrNoData},
		Charts:  charts,
		Ratios:  stubRatios{err: errors.New("screener down")},
		Log:     zerolog.Nop(),
	}

	in, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, int32(1), charts.calls.Load())
	assert.Equal(t, 105.0, in.Quote.LastPrice)
	assert.Equal(t, models.FundamentalSnapshot{}, in.Fundamentals)
}

func TestAssemblerPriceFromRatiosWhenNoBars(t *testing.T) {
	a := &Assembler{
		Ratios: stubRatios{r: &Ratios{Price: 2950}},
		Log:    zerolog.Nop(),
	}
	in, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Empty(t, in.History)
	require.NotNil(t, in.Quote)
	assert.Equal(t, 2950.0, in.Quote.LastPrice)
}

func TestAssemblerErrors(t *testing.T) {
	a := &Assembler{Log: zerolog.Nop()}

	_, err := a.Assemble(context.Background(), "NIFTY")
	assert.ErrorIs(t, err, ErrTickerNotFound)

	_, err = a.Assemble(context.Background(), "TCS")
	assert.ErrorIs(t, err, ErrNoData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Assembler{Charts: &stubChart{}, Log: zerolog.Nop()}).Assemble(ctx, "TCS")
	assert.ErrorIs(t, err, context.Canceled)
}

// movingChart serves a short series whose last close is the current price.
type movingChart struct {
	price atomic.Int64
	fail  atomic.Bool
	calls atomic.Int32
}

func (m *movingChart) GetChart(context.Context, string, string) (*Chart, error) {
	m.calls.Add(1)
	if m.fail.Load() {
		return nil, &ErrHTTP{StatusCode: 503, Status: "503 Service Unavailable"}
	}
	bars := sampleBars()
	last := float64(m.price.Load())
	bars[len(bars)-1].Close = last
	return &Chart{Bars: bars, Quote: &models.Quote{LastPrice: last}}, nil
}

func TestAssemblerRescoresLivePrices(t *testing.T) {
	dir := t.TempDir()
	charts := &movingChart{}
	charts.price.Store(100)
	a := &Assembler{History: NewHistoryDir(dir), Charts: charts, Log: zerolog.Nop()}

	first, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, 100.0, first.Quote.LastPrice)

	charts.price.Store(150)
	second, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)
	assert.Equal(t, int32(2), charts.calls.Load())
	assert.Equal(t, 150.0, second.Quote.LastPrice)
	assert.Equal(t, 150.0, second.History[len(second.History)-1].Close)

	saved, err := NewHistoryDir(dir).Load("TCS")
	require.NoError(t, err)
	assert.Equal(t, 150.0, saved[len(saved)-1].Close, "latest fetch is kept on disk")
}

func TestAssemblerFallsBackToKeptHistory(t *testing.T) {
	charts := &movingChart{}
	charts.price.Store(120)
	a := &Assembler{History: NewHistoryDir(t.TempDir()), Charts: charts, Log: zerolog.Nop()}

	_, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)

	charts.fail.Store(true)
	in, err := a.Assemble(context.Background(), "TCS")
	require.NoError(t, err)
	require.Len(t, in.History, 5)
	assert.Equal(t, 120.0, in.Quote.LastPrice)

	// Nothing stored and the chart down.
	bars, quote, err := (&Assembler{
		History: NewHistoryDir(t.TempDir()),
		Charts:  charts,
		Log:     zerolog.Nop(),
	}).bars(context.Background(), "INFY")
	assert.Nil(t, bars)
	assert.Nil(t, quote)
	var httpErr *ErrHTTP
	assert.ErrorAs(t, err, &httpErr)
	assert.ErrorIs(t, err, ErrNoData)
}
