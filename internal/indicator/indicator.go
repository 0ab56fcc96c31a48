// Package indicator provides stateless technical-indicator math over price
// series. Entries inside an indicator's warmup window are NaN; callers test
// with math.IsNaN rather than comparing against zero.
package indicator

import "math"

// SMA returns the simple moving average of prices over the given period. The
// result has the same length as the input with the first period-1 entries
// NaN.
func SMA(prices []float64, period int) []float64 {
	result := nanSlice(len(prices))
	if period < 1 || len(prices) < period {
		return result
	}
	sum := 0.0
	for i, price := range prices {
		sum += price
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			result[i] = sum / float64(period)
		}
	}
	return result
}

// EMA returns the exponential moving average with smoothing factor
// k = 2/(period+1). The first valid entry seeds from the SMA of the first
// period prices.
func EMA(prices []float64, period int) []float64 {
	result := nanSlice(len(prices))
	if period < 1 || len(prices) < period {
		return result
	}
	seed := 0.0
	for _, price := range prices[:period] {
		seed += price
	}
	result[period-1] = seed / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(prices); i++ {
		result[i] = prices[i]*k + result[i-1]*(1.0-k)
	}
	return result
}

// RSI returns the relative strength index using Wilder smoothing. It needs
// period+1 prices before producing a value; the first period entries are
// NaN. A zero average loss yields RSI 100.
func RSI(prices []float64, period int) []float64 {
	result := nanSlice(len(prices))
	if period < 1 || len(prices) < period+1 {
		return result
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = rsiValue(avgGain, avgLoss)
	}
	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
