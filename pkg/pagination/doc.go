// Package pagination provides parallel batch fetching for paginated
// KOL Port endpoints.
//
// List endpoints report their page window in the response envelope's
// pagination field. This package implements a worker pool that fetches
// the first page to learn the total page count, then distributes the
// remaining pages across workers.
//
// Example usage:
//
//	config := pagination.DefaultConfig()
//	fetcher := pagination.NewBatchFetcher(leaderboardFetcher, config)
//	pages, err := fetcher.FetchAllPages(ctx)
//
// The batch fetcher:
//   - Fetches the first page to determine total pages
//   - Spawns a worker pool (default 4 workers)
//   - Distributes remaining pages across workers
//   - Collects results with progress logging
//   - Handles errors gracefully (returns partial data)
package pagination
