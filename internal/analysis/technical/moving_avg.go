package technical

// SMA calculates Simple Moving Average for the given period.
// Values before the first full window are zero.
func SMA(data []float64, period int) []float64 {
	n := len(data)
	if n < period || period <= 0 {
		return nil
	}

	result := make([]float64, n)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = sum / float64(period)
	}

	return result
}

// SMALatest returns the most recent SMA value, or false when the data is
// shorter than the period.
func SMALatest(data []float64, period int) (float64, bool) {
	vals := SMA(data, period)
	if len(vals) == 0 {
		return 0, false
	}
	return vals[len(vals)-1], true
}

// EMA calculates Exponential Moving Average with smoothing 2/(period+1).
// The series is seeded with the first value, so every index is defined
// and short inputs still produce a usable average.
func EMA(data []float64, period int) []float64 {
	n := len(data)
	if n == 0 || period <= 0 {
		return nil
	}

	ema := make([]float64, n)
	k := 2.0 / float64(period+1)
	ema[0] = data[0]
	for i := 1; i < n; i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}
	return ema
}
