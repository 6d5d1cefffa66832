package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
	q "github.com/fongbrandon1928/Market-Dynamics/data/queries"
)

// GetMetaDataBySymbol returns nil without an error when the symbol was never synced
func (pg *Postgres) GetMetaDataBySymbol(ctx context.Context, symbol string) (*m.TimeSeriesMetadata, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[m.TimeSeriesMetadata](ctx, pg, q.Get(q.QueryHelper.Select.MetaDataBySymbol), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query metadata by symbol (%s): %w", symbol, err)
	}

	if len(res) == 0 {
		return nil, nil
	}

	return res[0], nil
}
