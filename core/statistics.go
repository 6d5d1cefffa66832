package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	ex "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
)

// MaxRollingWindow caps the trailing window used for the rolling mean and standard deviation
const MaxRollingWindow = 30

// PercentChange is price[t]/price[t-1] - 1, the first element has no prior and is NaN
func PercentChange(prices []float64) []float64 {
	res := make([]float64, len(prices))
	for t := range prices {
		if t == 0 {
			res[t] = math.NaN()
			continue
		}
		res[t] = prices[t]/prices[t-1] - 1
	}
	return res
}

// RelativeReturns subtracts the benchmark return from the series on each date
func RelativeReturns(returns, benchmark []float64) ([]float64, error) {
	if len(returns) != len(benchmark) {
		return nil, fmt.Errorf("error calculating relative returns, series lengths differ (%d != %d)", len(returns), len(benchmark))
	}

	res := make([]float64, len(returns))
	for t := range returns {
		res[t] = returns[t] - benchmark[t]
	}
	return res, nil
}

// trailing returns the window of at most size observations ending at t inclusive
func trailing(x []float64, t, size int) []float64 {
	return x[max(0, t-size+1) : t+1]
}

// RollingMean needs a single observation, early points use the shrinking window
func RollingMean(x []float64, window int) []float64 {
	res := make([]float64, len(x))
	for t := range x {
		res[t] = stat.Mean(trailing(x, t, window), nil)
	}
	return res
}

// RollingStdDev is the sample (N-1) standard deviation over the trailing window.
// Fewer than two observations is NaN, a window of identical values is exactly 0.
func RollingStdDev(x []float64, window int) []float64 {
	res := make([]float64, len(x))
	for t := range x {
		w := trailing(x, t, window)
		switch {
		case len(w) < 2:
			res[t] = math.NaN()
		case ex.AreAllEqual(w):
			res[t] = 0
		default:
			res[t] = stat.StdDev(w, nil)
		}
	}
	return res
}

// ZScores normalises each point by the rolling mean and standard deviation ending at it.
// Undefined points, zero or missing deviation and anything non finite, are 0.
func ZScores(x []float64, window int) []float64 {
	mean := RollingMean(x, window)
	std := RollingStdDev(x, window)

	res := make([]float64, len(x))
	for t := range x {
		if std[t] == 0 || math.IsNaN(std[t]) {
			continue
		}

		z := (x[t] - mean[t]) / std[t]
		if isFinite(z) {
			res[t] = z
		}
	}
	return res
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
