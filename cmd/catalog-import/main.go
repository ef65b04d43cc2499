// Command catalog-import bulk-loads catalog items from gzipped JSON-lines
// files. Each line holds one item: {"name": ..., "category": ..., "price":
// "12.50", "stock": 10}. Files are processed concurrently.
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

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/vendra/salescore/internal/storage/postgres"
)

type itemJSON struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing items*.jsonl.gz files")
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
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "items*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no items*.jsonl.gz files in %s", dataDir)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			n, err := importFile(ctx, pool, file)
			if err != nil {
				return errors.Wrapf(err, "import %s", file)
			}
			slog.Info("file imported", slog.String("file", file), slog.Int("items", n))
			return nil
		})
	}
	return g.Wait()
}

type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

func importFile(ctx context.Context, db copier, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	var rows [][]any
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var it itemJSON
		if err := json.Unmarshal(line, &it); err != nil {
			return 0, errors.Wrap(err, "decode item")
		}
		if it.Price.IsNegative() || it.Stock < 0 {
			return 0, errors.Errorf("invalid item %q: negative price or stock", it.Name)
		}
		rows = append(rows, []any{it.Name, it.Category, it.Price, it.Stock})
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrap(err, "scan")
	}

	n, err := db.CopyFrom(ctx,
		pgx.Identifier{"catalog_items"},
		[]string{"name", "category", "price", "stock"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, errors.Wrap(err, "copy rows")
	}
	return int(n), nil
}
