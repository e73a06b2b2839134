package dataset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/transitlab/sodafetch/pkg/pagination"
	"github.com/transitlab/sodafetch/pkg/soql"
)

// RowSource is the paginated-fetch capability the partitioner consumes.
type RowSource interface {
	FetchAll(ctx context.Context, datasetID, where, selectCols string) ([]pagination.Row, error)
}

// Fetch executes the configured fetch strategy and returns the dataset's
// full result table.
//
// In per-day mode every calendar day in [RangeStart, RangeEndExcl) is
// fetched independently with a one-day filter, in ascending order; empty
// days contribute nothing, and row order within each day is preserved. A
// failing day aborts the whole dataset. In single-shot mode one filter
// spans the entire range.
func Fetch(ctx context.Context, src RowSource, cfg Config) ([]pagination.Row, error) {
	logger := log.With().
		Str("dataset", cfg.Name).
		Str("dataset_id", cfg.ID).
		Logger()

	if !cfg.PerDay {
		where := soql.Where(cfg.DateColumn, cfg.DateSemantics, cfg.RangeStart, cfg.RangeEndExcl)
		logger.Info().Str("where", where).Msg("Fetching full range")

		rows, err := src.FetchAll(ctx, cfg.ID, where, cfg.SelectParam())
		if err != nil {
			return nil, err
		}
		logger.Info().Int("rows", len(rows)).Msg("Range fetched")
		return rows, nil
	}

	var out []pagination.Row
	for _, day := range Days(cfg.RangeStart, cfg.RangeEndExcl) {
		where := soql.Where(cfg.DateColumn, cfg.DateSemantics, day, day.AddDate(0, 0, 1))
		logger.Info().
			Str("day", day.Format("2006-01-02")).
			Str("where", where).
			Msg("Fetching day")

		rows, err := src.FetchAll(ctx, cfg.ID, where, cfg.SelectParam())
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", day.Format("2006-01-02"), err)
		}

		logger.Info().
			Str("day", day.Format("2006-01-02")).
			Int("rows", len(rows)).
			Msg("Day fetched")

		if len(rows) == 0 {
			continue
		}
		out = append(out, rows...)
	}

	return out, nil
}
