package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/transitlab/sodafetch/pkg/soql"
)

// Prometheus metrics for pagination.
var (
	sodaPagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soda_pages_fetched_total",
		Help: "Total pages fetched by dataset",
	}, []string{"dataset"})

	sodaRowsFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soda_rows_fetched_total",
		Help: "Total rows fetched by dataset",
	}, []string{"dataset"})
)

// ErrMalformedResponse indicates the response body is not a JSON row array.
var ErrMalformedResponse = errors.New("malformed response body")

// Row is one record as returned by the provider: an untyped mapping from
// field name to value. The schema is passed through, never validated.
type Row map[string]any

// PageFetcher is the transport capability the fetcher consumes.
type PageFetcher interface {
	// FetchPage performs one GET against the dataset resource endpoint and
	// returns the raw response body.
	FetchPage(ctx context.Context, datasetID string, params url.Values) ([]byte, error)
}

// Config holds fetcher configuration.
type Config struct {
	// PageSize is the $limit per request. Smaller pages reduce timeout risk.
	PageSize int

	// PageDelay is the fixed pause between successive page requests.
	PageDelay time.Duration

	// Clock drives the inter-page pause. Defaults to the real clock.
	Clock clockwork.Clock
}

// DefaultConfig returns safe defaults for Socrata endpoints.
func DefaultConfig() Config {
	return Config{
		PageSize:  25000,
		PageDelay: 200 * time.Millisecond,
	}
}

// Fetcher pulls all rows matching a filter from one dataset endpoint.
type Fetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewFetcher creates a new paginated fetcher.
func NewFetcher(fetcher PageFetcher, config Config) *Fetcher {
	if config.PageSize <= 0 {
		config.PageSize = 25000
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &Fetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAll returns the full ordered row sequence matching the filter.
// where and selectCols are optional; empty strings omit the parameter.
// It keeps requesting pages until a batch comes back shorter than the page
// size. There is no upper bound on the number of pages.
func (f *Fetcher) FetchAll(ctx context.Context, datasetID, where, selectCols string) ([]Row, error) {
	start := time.Now()

	var out []Row
	offset := 0
	pages := 0

	for {
		params := url.Values{}
		params.Set(soql.ParamLimit, strconv.Itoa(f.config.PageSize))
		params.Set(soql.ParamOffset, strconv.Itoa(offset))
		if where != "" {
			params.Set(soql.ParamWhere, where)
		}
		if selectCols != "" {
			params.Set(soql.ParamSelect, selectCols)
		}

		body, err := f.fetcher.FetchPage(ctx, datasetID, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		batch, err := decodeRows(body)
		if err != nil {
			return nil, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		pages++
		sodaPagesFetchedTotal.WithLabelValues(datasetID).Inc()
		sodaRowsFetchedTotal.WithLabelValues(datasetID).Add(float64(len(batch)))

		log.Debug().
			Str("dataset_id", datasetID).
			Int("offset", offset).
			Int("rows", len(batch)).
			Msg("Page fetched")

		out = append(out, batch...)

		// A short page is the last page.
		if len(batch) < f.config.PageSize {
			break
		}

		offset += f.config.PageSize

		if f.config.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-f.config.Clock.After(f.config.PageDelay):
			}
		}
	}

	log.Info().
		Str("dataset_id", datasetID).
		Int("pages", pages).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}

// decodeRows parses a response body as a JSON row array. Numbers decode as
// json.Number so values survive a decode/encode round trip unchanged.
func decodeRows(body []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var rows []Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return rows, nil
}
