package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSIStreaming(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		rsi := NewRSI(3)
		assert.Equal(t, "RSI(3)", rsi.Name())
		assert.Equal(t, 4, rsi.Warmup())
		assert.False(t, rsi.Ready())
		assert.Equal(t, 0.0, rsi.Value())

		// First price only establishes the reference.
		rsi.Update(100)
		assert.False(t, rsi.Ready())

		rsi.Update(101)
		rsi.Update(102)
		assert.False(t, rsi.Ready())

		rsi.Update(101)
		assert.True(t, rsi.Ready())

		// Gains 1, 1 and loss 1 over the first three diffs:
		// avgGain = 2/3, avgLoss = 1/3, RS = 2, RSI = 100 - 100/3.
		assert.InDelta(t, 100-100.0/3.0, rsi.Value(), 1e-9)
	})

	t.Run("wilder smoothing after warmup", func(t *testing.T) {
		rsi := NewRSI(2)
		rsi.Update(100)
		rsi.Update(102) // gain 2
		rsi.Update(101) // loss 1
		assert.True(t, rsi.Ready())

		rsi.Update(104) // gain 3
		// avgGain = (1*(2-1)+3)/2 = 2, avgLoss = (0.5*(2-1)+0)/2 = 0.25
		rs := 2.0 / 0.25
		assert.InDelta(t, 100-100/(1+rs), rsi.Value(), 1e-9)
	})

	t.Run("saturates at 100 with no losses", func(t *testing.T) {
		rsi := NewRSI(3)
		for _, p := range []float64{100, 101, 102, 103, 104} {
			rsi.Update(p)
		}
		assert.True(t, rsi.Ready())
		assert.Equal(t, 100.0, rsi.Value())
	})

	t.Run("reset functionality", func(t *testing.T) {
		rsi := NewRSI(2)
		for _, p := range []float64{100, 101, 102} {
			rsi.Update(p)
		}
		assert.True(t, rsi.Ready())

		rsi.Reset()
		assert.False(t, rsi.Ready())
		assert.Equal(t, 0.0, rsi.Value())
	})
}

func TestMACDStreaming(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		macd := NewMACD(2, 3, 2)
		assert.Equal(t, "MACD(2,3,2)", macd.Name())
		assert.Equal(t, 5, macd.Warmup())
		assert.False(t, macd.Ready())

		macd.Update(100)
		macd.Update(102)
		macd.Update(104)
		// Slow EMA just seeded; signal has one sample of two.
		assert.False(t, macd.Ready())

		macd.Update(106)
		assert.True(t, macd.Ready())

		// fast: SMA(100,102)=101, then 104 -> 103, then 106 -> 105
		// slow: SMA(100,102,104)=102, then 106 -> 104
		assert.InDelta(t, 105.0-104.0, macd.Value(), 1e-9)

		// signal: SMA of the first two MACD line samples (1, 1).
		assert.InDelta(t, 1.0, macd.Signal(), 1e-9)
	})

	t.Run("line relation flips with trend", func(t *testing.T) {
		macd := NewMACD(3, 6, 3)
		for p := 100.0; p < 130; p++ {
			macd.Update(p)
		}
		assert.True(t, macd.Ready())
		assert.Greater(t, macd.Value(), 0.0)

		for p := 130.0; p > 90; p-- {
			macd.Update(p)
		}
		assert.Less(t, macd.Value(), 0.0)
		assert.Less(t, macd.Value(), macd.Signal())
	})

	t.Run("reset functionality", func(t *testing.T) {
		macd := NewMACD(2, 3, 2)
		for _, p := range []float64{100, 102, 104, 106} {
			macd.Update(p)
		}
		assert.True(t, macd.Ready())

		macd.Reset()
		assert.False(t, macd.Ready())
		assert.Equal(t, 0.0, macd.Value())
		assert.Equal(t, 0.0, macd.Signal())
	})
}

func TestBollingerStreaming(t *testing.T) {
	t.Run("basic functionality", func(t *testing.T) {
		bb := NewBollinger(3, 2)
		assert.Equal(t, "BB(3,2.00)", bb.Name())
		assert.Equal(t, 3, bb.Warmup())
		assert.False(t, bb.Ready())
		assert.Equal(t, 0.0, bb.Mid())

		bb.Update(100)
		bb.Update(102)
		assert.False(t, bb.Ready())

		bb.Update(104)
		assert.True(t, bb.Ready())
		assert.InDelta(t, 102.0, bb.Mid(), 1e-9)

		sigma := math.Sqrt((4.0 + 0 + 4.0) / 3.0)
		assert.InDelta(t, 102+2*sigma, bb.Upper(), 1e-9)
		assert.InDelta(t, 102-2*sigma, bb.Lower(), 1e-9)
	})

	t.Run("window slides", func(t *testing.T) {
		bb := NewBollinger(3, 2)
		for _, p := range []float64{100, 102, 104, 106} {
			bb.Update(p)
		}
		assert.InDelta(t, 104.0, bb.Mid(), 1e-9)
	})

	t.Run("flat window collapses the bands", func(t *testing.T) {
		bb := NewBollinger(3, 2)
		for i := 0; i < 3; i++ {
			bb.Update(50)
		}
		assert.InDelta(t, 50.0, bb.Upper(), 1e-9)
		assert.InDelta(t, 50.0, bb.Lower(), 1e-9)
	})

	t.Run("reset functionality", func(t *testing.T) {
		bb := NewBollinger(2, 2)
		bb.Update(100)
		bb.Update(102)
		assert.True(t, bb.Ready())

		bb.Reset()
		assert.False(t, bb.Ready())
		assert.Equal(t, 0.0, bb.Mid())
	})
}

func TestIndicatorInterfaceCompliance(t *testing.T) {
	for _, ind := range []Indicator{
		NewRSI(14),
		NewMACD(12, 26, 9),
		NewBollinger(20, 2),
	} {
		assert.NotEmpty(t, ind.Name())
		assert.Positive(t, ind.Warmup())
		assert.False(t, ind.Ready())
	}
}
