package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
	q "github.com/fongbrandon1928/Market-Dynamics/data/queries"
)

const source = "postgres"

// GetDailyTimeSeries reads the stored closes for symbol within [start, end)
func (pg *Postgres) GetDailyTimeSeries(ctx context.Context, symbol string, start, end time.Time) (*m.TimeSeriesResult, error) {
	md, err := pg.GetMetaDataBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if md == nil {
		return nil, fmt.Errorf("%s has not been synced to the database: %w", symbol, m.ErrSymbolNotFound)
	}

	args := pgx.NamedArgs{
		"source_id":  md.Id,
		"start_date": start,
		"end_date":   end,
	}

	ts, err := Query[m.TimeSeriesData](ctx, pg, q.Get(q.QueryHelper.Select.ClosingPrices), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query closing prices by symbol (%s): %w", symbol, err)
	}

	md.Source = source

	return &m.TimeSeriesResult{
		Metadata:   md,
		TimeSeries: ts,
	}, nil
}
