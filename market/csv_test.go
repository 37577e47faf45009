package market

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadCSVBasic(t *testing.T) {
	in := `time,open,high,low,close,volume
2021-01-01 00:00:00,100,105,99,102,1000
2021-01-01 01:00:00,102,107,101,105,1100
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("close"))
	assert.True(t, s.Has("volume"))
	assert.False(t, s.Has("signal"))

	assert.Equal(t, 100.0, s.Bars[0].Open)
	assert.Equal(t, 105.0, s.Bars[1].Close)
	assert.Equal(t, time.Date(2021, 1, 1, 1, 0, 0, 0, time.UTC), s.Bars[1].Time)
}

func TestReadCSVHeaderAliases(t *testing.T) {
	in := `Date,Open,High,Low,Close,Volume BTC
2021-01-01 00:00:00,100,105,99,102,1000
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("volume"))
	assert.Equal(t, 1000.0, s.Bars[0].Volume)
}

func TestReadCSVJunkLineBeforeHeader(t *testing.T) {
	in := `exported by cryptodatadump v2
time,close
2021-01-01 00:00:00,102
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestReadCSVNoHeader(t *testing.T) {
	in := `junk one
junk two
2021-01-01 00:00:00,102
`
	_, err := ReadCSV(strings.NewReader(in))
	assert.Error(t, err)
}

func TestReadCSVDropsUnparseableTimestamps(t *testing.T) {
	in := `time,close
2021-01-01 00:00:00,102
not-a-date,103
2021-01-01 02:00:00,104
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 104.0, s.Bars[1].Close)
}

func TestReadCSVBadNumericIsFatal(t *testing.T) {
	in := `time,close
2021-01-01 00:00:00,102
2021-01-01 01:00:00,oops
`
	_, err := ReadCSV(strings.NewReader(in))
	var ive *InvalidValueError
	assert.ErrorAs(t, err, &ive)
	assert.Equal(t, "close", ive.Field)
	assert.Equal(t, 2, ive.Row)
	assert.Equal(t, "oops", ive.Value)
}

func TestReadCSVBadSignalIsFatal(t *testing.T) {
	in := `time,close,signal
2021-01-01 00:00:00,102,up
`
	_, err := ReadCSV(strings.NewReader(in))
	var ive *InvalidValueError
	assert.ErrorAs(t, err, &ive)
	assert.Equal(t, "signal", ive.Field)
}

func TestReadCSVSignalColumn(t *testing.T) {
	in := `time,close,signal
2021-01-01 00:00:00,102,1
2021-01-01 01:00:00,103,-1
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.True(t, s.Has("signal"))
	assert.Equal(t, 1, s.Bars[0].Signal)
	assert.Equal(t, -1, s.Bars[1].Signal)
}

func TestReadCSVSortsByTime(t *testing.T) {
	in := `time,close
2021-01-01 02:00:00,104
2021-01-01 00:00:00,102
2021-01-01 01:00:00,103
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 102.0, s.Bars[0].Close)
	assert.Equal(t, 103.0, s.Bars[1].Close)
	assert.Equal(t, 104.0, s.Bars[2].Close)
}

func TestReadCSVUnixTimestamps(t *testing.T) {
	in := `timestamp,close
1609459200,102
1609462800000,103
`
	s, err := ReadCSV(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), s.Bars[0].Time)
	assert.Equal(t, time.Date(2021, 1, 1, 1, 0, 0, 0, time.UTC), s.Bars[1].Time)
}

func TestReadCSVMissingTimeColumn(t *testing.T) {
	in := `open,close
100,102
`
	_, err := ReadCSV(strings.NewReader(in))
	assert.Error(t, err)
}

func TestLoadCSVGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv.gz")

	f, err := os.Create(path)
	assert.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("time,close\n2021-01-01 00:00:00,102\n"))
	assert.NoError(t, err)
	assert.NoError(t, zw.Close())
	assert.NoError(t, f.Close())

	s, err := LoadCSV(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 102.0, s.Bars[0].Close)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestBarField(t *testing.T) {
	b := Bar{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100}

	for name, want := range map[string]float64{
		"open": 1, "high": 2, "low": 0.5, "close": 1.5, "volume": 100,
	} {
		v, err := b.Field(name)
		assert.NoError(t, err)
		assert.Equal(t, want, v)
	}

	_, err := b.Field("vwap")
	var mfe *MissingFieldError
	assert.True(t, errors.As(err, &mfe))
	assert.Equal(t, "vwap", mfe.Field)
}

func TestSeriesCloneAndSlice(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: base, Close: 100},
		{Time: base.Add(time.Hour), Close: 101},
		{Time: base.Add(2 * time.Hour), Close: 102},
	}
	s := NewSeries(bars, "close")

	c := s.Clone()
	c.Bars[0].Signal = 1
	c.MarkField("signal")
	assert.Equal(t, 0, s.Bars[0].Signal)
	assert.False(t, s.Has("signal"))

	sl := s.Slice(1, 3)
	assert.Equal(t, 2, sl.Len())
	assert.Equal(t, 101.0, sl.Bars[0].Close)
	sl.Bars[0].Close = 999
	assert.Equal(t, 101.0, s.Bars[1].Close)
}
