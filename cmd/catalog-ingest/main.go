// Command catalog-ingest bulk-loads product catalog exports into the
// database. Exports arrive as gzip-compressed JSONL part files; the same
// product code may appear in several parts, and the part with the lowest
// index wins.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-intake/internal/domain/product"
	"github.com/xenking/order-intake/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.0001
	progressEvery = 1_000_000
)

// record is one line of a catalog export part file.
type record struct {
	Code     uuid.UUID       `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// fileResult holds the records a single part file claimed during pass 2.
type fileResult struct {
	claimed []record
	skipped uint64
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog-part*.jsonl.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalog-part*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob part files")
	}
	if len(files) == 0 {
		return errors.Errorf("no catalog-part*.jsonl.gz files in %s", dataDir)
	}
	sort.Strings(files)

	// Pass 1: build one bloom filter of product codes per part file,
	// concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: re-stream each file and claim the records it owns. A record
	// is skipped when a lower-index part file already contains its code,
	// so each code is written at most once per run.
	slog.Info("pass 2: claiming records per file")

	results, err := claimRecords(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "claim records")
	}

	var total, dupes uint64
	for _, r := range results {
		total += uint64(len(r.claimed))
		dupes += r.skipped
	}
	slog.Info("records claimed", slog.Uint64("total", total), slog.Uint64("duplicates_skipped", dupes))

	if total == 0 {
		slog.Info("no records to write")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := writeProducts(ctx, postgres.NewProductRepository(pool), results); err != nil {
		return errors.Wrap(err, "write products to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(rec record) {
			filter.AddString(rec.Code.String())
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_records", count),
		)

		filters[idx] = filter
		return nil
	}
}

// claimRecords re-streams each file concurrently. File i claims a record
// unless the code tests positive in the filter of a file with a lower index.
func claimRecords(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(claimRecordsInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func claimRecordsInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		var (
			claimed []record
			skipped uint64
			count   uint64
		)
		seen := make(map[uuid.UUID]struct{})

		if err := streamGzFile(ctx, path, func(rec record) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("records", count),
				)
			}

			// Intra-file duplicates: first occurrence wins.
			if _, ok := seen[rec.Code]; ok {
				skipped++
				return
			}
			seen[rec.Code] = struct{}{}

			// Cross-file duplicates: an earlier part file owns this code.
			code := rec.Code.String()
			for j := range idx {
				if filters[j].TestString(code) {
					skipped++
					return
				}
			}

			claimed = append(claimed, rec)
		}); err != nil {
			return errors.Wrapf(err, "scan file %d", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_records", count),
			slog.Int("claimed", len(claimed)),
			slog.Uint64("skipped", skipped),
		)

		results[idx] = fileResult{claimed: claimed, skipped: skipped}
		return nil
	}
}

// streamGzFile opens a gzip-compressed JSONL file and calls fn for each
// decoded record.
func streamGzFile(ctx context.Context, path string, fn func(rec record)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	var line uint64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return errors.Wrapf(err, "decode line %d of %s", line, path)
		}
		fn(rec)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writeProducts upserts all claimed records into the database, file by file.
func writeProducts(ctx context.Context, repo *postgres.ProductRepository, results []fileResult) error {
	var total int
	for _, r := range results {
		total += len(r.claimed)
	}
	slog.Info("writing products to database", slog.Int("count", total))

	var written int
	for _, r := range results {
		for _, rec := range r.claimed {
			err := repo.Upsert(ctx, &product.Product{
				Code:     rec.Code,
				Name:     rec.Name,
				Price:    rec.Price,
				Category: rec.Category,
			})
			if err != nil {
				return errors.Wrapf(err, "upsert product %s", rec.Code)
			}

			written++
			if written%1000 == 0 || written == total {
				slog.Info("write progress", slog.Int("written", written), slog.Int("total", total))
			}
		}
	}

	return nil
}
