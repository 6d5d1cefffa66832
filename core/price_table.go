package core

import (
	"math"
	"slices"
	"time"

	ex "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
)

// PriceTable holds closing prices of every resolved symbol on one shared date index.
// Dates are calendar dates at midnight UTC, strictly increasing. A NaN close marks a
// date on which that symbol had no usable print.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Closes  map[string][]float64
}

// ReturnTable holds day over day percentage changes. Only dates on which every
// symbol has a return survive, so all series share Dates.
type ReturnTable struct {
	Dates   []time.Time
	Returns map[string][]float64
}

// NewPriceTable outer joins the series on their calendar dates. Null and non positive
// closes count as missing, a repeated date keeps the later observation.
func NewPriceTable(series map[string][]*m.TimeSeriesData) *PriceTable {
	byDate := make(map[time.Time]map[string]float64)
	symbols := make([]string, 0, len(series))

	for symbol, ts := range series {
		if len(ts) == 0 {
			continue
		}
		symbols = append(symbols, symbol)

		for _, tsd := range ts {
			if tsd == nil {
				continue
			}

			d := ex.DateOf(tsd.Timestamp)
			if _, ok := byDate[d]; !ok {
				byDate[d] = make(map[string]float64)
			}

			price := tsd.ClosingPrice()
			if !price.Valid || price.Float64 <= 0 || math.IsNaN(price.Float64) || math.IsInf(price.Float64, 0) {
				continue
			}
			byDate[d][symbol] = price.Float64
		}
	}

	slices.Sort(symbols)

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	closes := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		col := make([]float64, len(dates))
		for i, d := range dates {
			if v, ok := byDate[d][symbol]; ok {
				col[i] = v
			} else {
				col[i] = math.NaN()
			}
		}
		closes[symbol] = col
	}

	return &PriceTable{
		Dates:   dates,
		Symbols: symbols,
		Closes:  closes,
	}
}

func (pt *PriceTable) IsEmpty() bool {
	return pt == nil || len(pt.Dates) == 0 || len(pt.Symbols) == 0
}

func (pt *PriceTable) HasSymbol(symbol string) bool {
	_, ok := pt.Closes[symbol]
	return ok
}

// Returns forward fills gaps in each symbol, takes percentage changes and keeps the
// dates where no symbol is missing a return. The first date never has one.
func (pt *PriceTable) Returns() *ReturnTable {
	rt := &ReturnTable{
		Dates:   make([]time.Time, 0),
		Returns: make(map[string][]float64, len(pt.Symbols)),
	}

	raw := make(map[string][]float64, len(pt.Symbols))
	for _, symbol := range pt.Symbols {
		raw[symbol] = PercentChange(ForwardFill(pt.Closes[symbol]))
		rt.Returns[symbol] = make([]float64, 0, len(pt.Dates))
	}

	for t, d := range pt.Dates {
		complete := true
		for _, symbol := range pt.Symbols {
			if math.IsNaN(raw[symbol][t]) {
				complete = false
				break
			}
		}

		if !complete {
			continue
		}

		rt.Dates = append(rt.Dates, d)
		for _, symbol := range pt.Symbols {
			rt.Returns[symbol] = append(rt.Returns[symbol], raw[symbol][t])
		}
	}

	return rt
}

// ForwardFill carries the last seen value over NaN gaps, leading gaps stay NaN
func ForwardFill(values []float64) []float64 {
	res := make([]float64, len(values))
	last := math.NaN()
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
		}
		res[i] = last
	}
	return res
}
