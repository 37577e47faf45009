package market

import "time"

// Bar is one row of an ordered price series: an OHLCV candle plus the
// discrete trading signal attached downstream (-1 short, 0 hold, +1 long).
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Signal int
}

// Field returns the named price field of the bar. Field names are the
// lower-case column names of the canonical CSV layout.
func (b Bar) Field(name string) (float64, error) {
	switch name {
	case "open":
		return b.Open, nil
	case "high":
		return b.High, nil
	case "low":
		return b.Low, nil
	case "close":
		return b.Close, nil
	case "volume":
		return b.Volume, nil
	}
	return 0, &MissingFieldError{Field: name}
}
