// Package pagination provides sequential offset-based fetching for Socrata
// resource endpoints.
//
// Socrata reports no total count, so pages are pulled with $limit/$offset
// until a short page signals exhaustion. A full final page therefore costs
// one extra empty round trip; that is the correct conservative behavior for
// unknown totals and is pinned by a test.
//
// Example usage:
//
//	config := pagination.DefaultConfig()
//	fetcher := pagination.NewFetcher(sodaClient, config)
//	rows, err := fetcher.FetchAll(ctx, "wujg-7c2s", where, selectCols)
//
// The fetcher:
//   - Issues strictly sequential requests (one page in flight at a time)
//   - Accumulates rows in arrival order
//   - Pauses a fixed interval between pages to respect provider rate limits
//   - Decodes numbers as json.Number so downstream output is byte-stable
package pagination
