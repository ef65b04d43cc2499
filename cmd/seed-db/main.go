package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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
		databaseURL string
		itemsFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&itemsFile, "items-file", "db/seed/items.json", "path to catalog items JSON file")
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

	if err := run(ctx, databaseURL, itemsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, itemsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedItems(ctx, pool, itemsFile); err != nil {
		return errors.Wrap(err, "seed catalog items")
	}

	if err := seedPeople(ctx, pool); err != nil {
		return errors.Wrap(err, "seed customers and salespersons")
	}

	return nil
}

const upsertItemSQL = `
INSERT INTO catalog_items (name, category, price, stock)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE
SET category = EXCLUDED.category,
    price    = EXCLUDED.price,
    stock    = EXCLUDED.stock`

func seedItems(ctx context.Context, pool *pgxpool.Pool, itemsFile string) error {
	slog.Info("reading items file", slog.String("path", itemsFile))

	data, err := os.ReadFile(itemsFile)
	if err != nil {
		return errors.Wrap(err, "read items file")
	}

	var items []itemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse items JSON")
	}

	slog.Info("upserting items", slog.Int("count", len(items)))

	for _, it := range items {
		if it.Price.IsNegative() {
			return errors.Errorf("item %q has negative price", it.Name)
		}
		if _, err := pool.Exec(ctx, upsertItemSQL, it.Name, it.Category, it.Price, it.Stock); err != nil {
			return errors.Wrapf(err, "upsert item %s", it.Name)
		}

		slog.Info("upserted item", slog.String("name", it.Name), slog.String("price", it.Price.StringFixed(2)))
	}

	return nil
}

const (
	upsertCustomerSQL = `
INSERT INTO customers (name, email)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING`

	upsertSalespersonSQL = `
INSERT INTO salespersons (name, email)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING`
)

func seedPeople(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo customers and salespersons")

	customers := [][2]string{
		{"Ada Wong", "ada@example.com"},
		{"Bram Okafor", "bram@example.com"},
		{"Carla Mendes", "carla@example.com"},
	}
	for _, c := range customers {
		if _, err := pool.Exec(ctx, upsertCustomerSQL, c[0], c[1]); err != nil {
			return errors.Wrapf(err, "insert customer %s", c[0])
		}
	}

	salespersons := [][2]string{
		{"Dina Petrov", "dina@vendra.example"},
		{"Elias Kim", "elias@vendra.example"},
	}
	for _, s := range salespersons {
		if _, err := pool.Exec(ctx, upsertSalespersonSQL, s[0], s[1]); err != nil {
			return errors.Wrapf(err, "insert salesperson %s", s[0])
		}
	}

	return nil
}
