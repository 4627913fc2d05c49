// Command seed-db runs migrations and loads the static reference data the
// intake pipeline depends on: the two fixed suppliers, demo customers, and
// demo products with their external codes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-intake/internal/domain/customer"
	"github.com/xenking/order-intake/internal/domain/product"
	"github.com/xenking/order-intake/internal/domain/supplier"
	"github.com/xenking/order-intake/internal/storage/postgres"
)

type seedFile struct {
	Customers []customerJSON `json:"customers"`
	Products  []productJSON  `json:"products"`
}

type customerJSON struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type productJSON struct {
	Code     uuid.UUID       `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

func main() {
	var (
		databaseURL string
		seedPath    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/reference.json", "path to reference data JSON file")
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

	if err := run(ctx, databaseURL, seedPath); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath string) error {
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

	if err := seedSuppliers(ctx, postgres.NewSupplierRepository(pool)); err != nil {
		return errors.Wrap(err, "seed suppliers")
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse seed JSON")
	}

	if err := seedCustomers(ctx, postgres.NewCustomerRepository(pool), seed.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}
	if err := seedProducts(ctx, postgres.NewProductRepository(pool), seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	return nil
}

func seedSuppliers(ctx context.Context, repo *postgres.SupplierRepository) error {
	for _, s := range []supplier.Supplier{supplier.Alpha, supplier.Beta} {
		if err := repo.Upsert(ctx, s); err != nil {
			return err
		}
		slog.Info("upserted supplier", slog.Int64("id", s.ID), slog.String("name", s.Name))
	}
	return nil
}

func seedCustomers(ctx context.Context, repo *postgres.CustomerRepository, customers []customerJSON) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	for _, c := range customers {
		if err := repo.Upsert(ctx, customer.Customer{Name: c.Name, Email: c.Email}); err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		err := repo.Upsert(ctx, &product.Product{
			Code:     p.Code,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
		})
		if err != nil {
			return err
		}
		slog.Info("upserted product", slog.String("code", p.Code.String()), slog.String("name", p.Name))
	}
	return nil
}
