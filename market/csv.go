package market

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Column aliases accepted in CSV headers, keyed by canonical field name.
// Exchange exports vary: Binance dumps use "Date" and "Volume BTC".
var headerAliases = map[string]string{
	"date":       "time",
	"timestamp":  "time",
	"time":       "time",
	"open":       "open",
	"high":       "high",
	"low":        "low",
	"close":      "close",
	"volume":     "volume",
	"volume btc": "volume",
	"vol":        "volume",
	"signal":     "signal",
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// LoadCSV reads an OHLCV (optionally signal-carrying) CSV file into a
// Series. Files ending in .gz or .xz are decompressed transparently.
//
// Cleaning rules:
//   - a single junk line before the header is tolerated and skipped
//   - rows whose timestamp does not parse are dropped
//   - rows are sorted ascending by timestamp
//   - a numeric field that fails to parse is a fatal InvalidValueError
func LoadCSV(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer zr.Close()
		src = zr
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz %s: %w", path, err)
		}
		src = xr
	}

	return ReadCSV(src)
}

// ReadCSV parses CSV bar data from r. See LoadCSV for the cleaning rules.
func ReadCSV(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	cols, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if _, ok := cols["time"]; !ok {
		return nil, &MissingFieldError{Field: "time"}
	}

	var bars []Bar
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if len(rec) == 0 {
			continue
		}

		t, ok := parseTime(rec, cols["time"])
		if !ok {
			// Unparseable timestamps are dropped, not fatal.
			continue
		}

		var b Bar
		b.Time = t
		for field, idx := range cols {
			if field == "time" || idx >= len(rec) {
				continue
			}
			raw := strings.TrimSpace(rec[idx])
			if field == "signal" {
				sig, err := strconv.Atoi(raw)
				if err != nil {
					return nil, &InvalidValueError{Field: "signal", Row: row, Value: raw}
				}
				b.Signal = sig
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InvalidValueError{Field: field, Row: row, Value: raw}
			}
			switch field {
			case "open":
				b.Open = v
			case "high":
				b.High = v
			case "low":
				b.Low = v
			case "close":
				b.Close = v
			case "volume":
				b.Volume = v
			}
		}
		bars = append(bars, b)
	}

	fields := make([]string, 0, len(cols))
	for f := range cols {
		if f != "time" {
			fields = append(fields, f)
		}
	}
	s := NewSeries(bars, fields...)
	s.SortByTime()
	return s, nil
}

// readHeader consumes the header row, tolerating one junk line before it.
func readHeader(cr *csv.Reader) (map[string]int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		rec, err := cr.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		cols := make(map[string]int)
		for i, name := range rec {
			canon, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				continue
			}
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
		if _, ok := cols["time"]; ok {
			return cols, nil
		}
	}
	return nil, fmt.Errorf("no recognizable header row in first two lines")
}

func parseTime(rec []string, idx int) (time.Time, bool) {
	if idx >= len(rec) {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(rec[idx])
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Unix seconds or milliseconds, as emitted by some kline dumps.
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}
