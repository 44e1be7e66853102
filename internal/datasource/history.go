package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/seenimoa/indiquant/pkg/models"
	"github.com/seenimoa/indiquant/pkg/utils"
)

// Bar is the on-disk layout of one daily bar, shared by the parquet and
// JSON history files.
type Bar struct {
	Timestamp int64   `json:"t" parquet:"t"` // Unix timestamp in milliseconds
	Open      float64 `json:"o" parquet:"o"`
	High      float64 `json:"h" parquet:"h"`
	Low       float64 `json:"l" parquet:"l"`
	Close     float64 `json:"c" parquet:"c"`
	Volume    int64   `json:"v" parquet:"v"`
}

// ToOHLCV converts a stored bar.
func (b Bar) ToOHLCV() models.OHLCV {
	return models.OHLCV{
		Timestamp: time.UnixMilli(b.Timestamp).In(utils.IST),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
	}
}

// BarFromOHLCV converts a bar for storage.
func BarFromOHLCV(o models.OHLCV) Bar {
	return Bar{
		Timestamp: o.Timestamp.UnixMilli(),
		Open:      o.Open,
		High:      o.High,
		Low:       o.Low,
		Close:     o.Close,
		Volume:    o.Volume,
	}
}

// ReadBars loads bars from a .parquet or .json file, oldest first.
func ReadBars(path string) ([]models.OHLCV, error) {
	var (
		bars []Bar
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		bars, err = parquet.ReadFile[Bar](path)
	case ".json":
		bars, err = readJSONBars(path)
	default:
		return nil, fmt.Errorf("unsupported history format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	out := make([]models.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = b.ToOHLCV()
	}
	return out, nil
}

func readJSONBars(path string) ([]Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bars []Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// WriteBars stores bars as parquet or JSON depending on the extension.
func WriteBars(path string, series []models.OHLCV) error {
	bars := make([]Bar, len(series))
	for i, o := range series {
		bars[i] = BarFromOHLCV(o)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return parquet.WriteFile(path, bars)
	case ".json":
		data, err := json.Marshal(bars)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return fmt.Errorf("unsupported history format %q", filepath.Ext(path))
}

// HistoryDir resolves <dir>/<TICKER>.parquet, then <dir>/<TICKER>.json.
type HistoryDir struct {
	dir string
}

// NewHistoryDir creates a file history source rooted at dir.
func NewHistoryDir(dir string) *HistoryDir {
	return &HistoryDir{dir: dir}
}

// Load returns the stored bars for ticker, or ErrNoData when no file exists.
func (h *HistoryDir) Load(ticker string) ([]models.OHLCV, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}
	for _, ext := range []string{".parquet", ".json"} {
		path := filepath.Join(h.dir, symbol+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return ReadBars(path)
	}
	return nil, fmt.Errorf("%w: no history file for %s in %s", ErrNoData, symbol, h.dir)
}

// Save writes bars to <dir>/<TICKER>.parquet.
func (h *HistoryDir) Save(ticker string, bars []models.OHLCV) error {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidSymbol(symbol) {
		return fmt.Errorf("%w: %q", ErrTickerNotFound, ticker)
	}
	return WriteBars(filepath.Join(h.dir, symbol+".parquet"), bars)
}
