// Command kolport-gateway exposes the KOL Port client as a small HTTP
// service: one process holds the cache, rate limit state, and event bus,
// and local consumers talk to it over plain HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kolport/kolport-go/pkg/cache"
	"github.com/kolport/kolport-go/pkg/client"
	"github.com/kolport/kolport-go/pkg/logging"
	"github.com/kolport/kolport-go/pkg/metrics"
	"github.com/kolport/kolport-go/pkg/pagination"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
		Output: os.Stderr,
	})

	apiKey := os.Getenv("KOLPORT_API_KEY")
	if apiKey == "" {
		logger.Fatal().Msg("KOLPORT_API_KEY is required")
	}

	port := getEnv("PORT", "8080")
	env := client.Environment(getEnv("KOLPORT_ENV", string(client.EnvProduction)))

	cfg := client.DefaultConfig(apiKey)
	cfg.Environment = env

	// Optional Redis-backed cache; default is the in-memory store.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: redisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", redisURL).Msg("Connected to Redis")
		cfg.Cache = cache.NewRedisStore(redisClient)
	}

	kolClient, err := client.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}
	defer kolClient.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/gateway/verification", verificationHandler(kolClient))
	mux.HandleFunc("/gateway/whitelist", whitelistHandler(kolClient))
	mux.HandleFunc("/gateway/kol/metrics", kolMetricsHandler(kolClient))
	mux.HandleFunc("/gateway/leaderboard", leaderboardHandler(kolClient))
	mux.HandleFunc("/gateway/leaderboard/full", leaderboardFullHandler(kolClient))
	mux.HandleFunc("/gateway/transfer", transferHandler(kolClient))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("environment", string(env)).
		Msg("Starting gateway")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// writeEnvelope serializes a response envelope. The HTTP status is
// always 200: consumers branch on the envelope's success field.
func writeEnvelope(w http.ResponseWriter, resp *client.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func verificationHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		writeEnvelope(w, c.GetVerificationStatus(ctx, r.URL.Query().Get("wallet")))
	}
}

func whitelistHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		writeEnvelope(w, c.CheckWhitelist(ctx, r.URL.Query().Get("wallet")))
	}
}

func kolMetricsHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		writeEnvelope(w, c.GetKOLMetrics(ctx, r.URL.Query().Get("wallet")))
	}
}

func leaderboardHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		writeEnvelope(w, c.GetKOLLeaderboard(ctx, page, perPage))
	}
}

// leaderboardFetcher adapts the client's leaderboard call to the batch
// fetcher's page interface.
type leaderboardFetcher struct {
	client  *client.Client
	perPage int
}

func (f *leaderboardFetcher) FetchPage(ctx context.Context, page int) (json.RawMessage, int, error) {
	resp := f.client.GetKOLLeaderboard(ctx, page, f.perPage)
	if !resp.Success {
		return nil, 0, fmt.Errorf("leaderboard page %d failed: %s", page, resp.Error.Code)
	}

	totalPages := 1
	if resp.Pagination != nil {
		totalPages = resp.Pagination.TotalPages
	}
	return resp.Data, totalPages, nil
}

// leaderboardFullHandler fetches every leaderboard page in parallel and
// returns the concatenated entries.
func leaderboardFullHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage < 1 {
			perPage = 100
		}

		fetcher := pagination.NewBatchFetcher(
			&leaderboardFetcher{client: c, perPage: perPage},
			pagination.DefaultConfig(),
		)

		pages, err := fetcher.FetchAllPages(ctx)
		if err != nil && len(pages) == 0 {
			http.Error(w, fmt.Sprintf("leaderboard fetch failed: %v", err), http.StatusBadGateway)
			return
		}

		// Merge pages in order. Iterate the fetched page numbers rather
		// than counting up to the map length: a missing middle page must
		// not drop the pages after it.
		pageNums := make([]int, 0, len(pages))
		for page := range pages {
			pageNums = append(pageNums, page)
		}
		sort.Ints(pageNums)

		var entries []json.RawMessage
		for _, page := range pageNums {
			var pageEntries []json.RawMessage
			if err := json.Unmarshal(pages[page], &pageEntries); err != nil {
				continue
			}
			entries = append(entries, pageEntries...)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    entries,
			"partial": err != nil,
		})
	}
}

func transferHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req client.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		writeEnvelope(w, c.Transfer(ctx, req))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
