package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests. Keep
	// well below the backend's rate limit budget.
	MaxConcurrency int
	// Timeout per page fetch.
	Timeout time.Duration
	// BufferSize for channels (default: estimated total pages).
	BufferSize int
}

// DefaultConfig returns safe defaults for the KOL Port backend.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		BufferSize:     64,
	}
}

// PageFetcher fetches a single page of a paginated endpoint and reports
// the total page count from the response envelope.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (data json.RawMessage, totalPages int, err error)
}

// PageResult represents the result of fetching a single page.
type PageResult struct {
	PageNumber int
	Data       json.RawMessage
	Error      error
}

// BatchFetcher handles parallel fetching of multiple pages.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

// FetchAllPages fetches every page in parallel using a worker pool.
// Returns a map of pageNumber -> data for successful pages.
func (bf *BatchFetcher) FetchAllPages(ctx context.Context) (map[int]json.RawMessage, error) {
	start := time.Now()

	// First page tells us how many pages exist.
	firstPageData, totalPages, err := bf.fetcher.FetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	log.Info().
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	if totalPages <= 1 {
		log.Info().
			Int("pages", 1).
			Dur("duration", time.Since(start)).
			Msg("Fetch complete (single page)")
		return map[int]json.RawMessage{1: firstPageData}, nil
	}

	results := make(map[int]json.RawMessage)
	results[1] = firstPageData
	var resultsMutex sync.Mutex

	pageQueue := make(chan int, bf.config.BufferSize)
	pageResults := make(chan PageResult, bf.config.BufferSize)
	errors := make(chan error, bf.config.MaxConcurrency)

	// Fill page queue (skip page 1, already fetched).
	go func() {
		for page := 2; page <= totalPages; page++ {
			pageQueue <- page
		}
		close(pageQueue)
	}()

	var wg sync.WaitGroup
	for i := 0; i < bf.config.MaxConcurrency; i++ {
		wg.Add(1)
		go bf.worker(ctx, pageQueue, pageResults, errors, &wg, i)
	}

	go func() {
		wg.Wait()
		close(pageResults)
		close(errors)
	}()

	fetchedPages := 1
	for result := range pageResults {
		if result.Error != nil {
			log.Warn().
				Err(result.Error).
				Int("page", result.PageNumber).
				Msg("Page fetch failed")
			continue
		}

		resultsMutex.Lock()
		results[result.PageNumber] = result.Data
		fetchedPages++
		resultsMutex.Unlock()
	}

	select {
	case err := <-errors:
		if err != nil {
			log.Warn().
				Err(err).
				Int("fetched_pages", fetchedPages).
				Int("total_pages", totalPages).
				Msg("Worker error - returning partial results")
			return results, fmt.Errorf("worker error (partial data: %d/%d pages): %w", fetchedPages, totalPages, err)
		}
	default:
	}

	log.Info().
		Int("pages", fetchedPages).
		Int("total", totalPages).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return results, nil
}

// worker processes pages from the queue.
func (bf *BatchFetcher) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult, errors chan<- error, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for pageNum := range pageQueue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		data, _, err := bf.fetcher.FetchPage(pageCtx, pageNum)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", pageNum).
				Msg("Page fetch failed")

			// Non-blocking error send
			select {
			case errors <- err:
			default:
			}
			return
		}

		select {
		case results <- PageResult{
			PageNumber: pageNum,
			Data:       data,
		}:
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled after fetch)")
			return
		}

		pagesProcessed++
	}

	if pagesProcessed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}
