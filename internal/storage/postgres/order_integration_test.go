//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/order-intake/internal/domain/customer"
	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/domain/product"
	"github.com/xenking/order-intake/internal/domain/supplier"
)

// --- Helpers ---

// startPostgres provisions a throwaway postgres container and returns a
// migrated pool bound to it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:17-alpine",
			Env: map[string]string{
				"POSTGRES_USER":     "intake",
				"POSTGRES_PASSWORD": "intake",
				"POSTGRES_DB":       "intake",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := NewPool(ctx, fmt.Sprintf("postgres://intake:intake@%s:%s/intake?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.Eventually(t, func() bool {
		return pool.Ping(ctx) == nil
	}, 30*time.Second, 250*time.Millisecond, "postgres never became reachable")

	require.NoError(t, RunMigrations(ctx, pool))
	return pool
}

// seedReferenceRows inserts the minimal supplier, customer, and product rows
// an order needs to satisfy its foreign keys.
func seedReferenceRows(t *testing.T, pool *pgxpool.Pool) (customerID, bottleID, muggID int64) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, NewSupplierRepository(pool).Upsert(ctx, supplier.Alpha))

	require.NoError(t, NewCustomerRepository(pool).Upsert(ctx, customer.Customer{
		Name:  "Ada Brennan",
		Email: "ada@example.com",
	}))
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT id FROM customers WHERE email = $1`, "ada@example.com").Scan(&customerID))

	products := NewProductRepository(pool)
	bottle := &product.Product{Code: uuid.New(), Name: "bottle", Price: mustDecimal(t, "9.99")}
	require.NoError(t, products.Create(ctx, bottle))
	mug := &product.Product{Code: uuid.New(), Name: "mug", Price: mustDecimal(t, "4.50")}
	require.NoError(t, products.Create(ctx, mug))

	return customerID, bottle.ID, mug.ID
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n))
	return n
}

// --- Tests ---

func TestOrderRepositoryCreateAtomicity(t *testing.T) {
	pool := startPostgres(t)
	customerID, bottleID, mugID := seedReferenceRows(t, pool)
	repo := NewOrderRepository(pool)
	ctx := context.Background()

	validOrder := func() *order.Order {
		return &order.Order{
			CustomerID:     &customerID,
			SupplierID:     supplier.Alpha.ID,
			OrderDate:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			Status:         order.StatusReceived,
			BillingAddress: order.Address{Street: "1 Harbour Way", City: "Leeds"},
			Items: []order.Item{
				{ProductID: bottleID, Quantity: 2, Price: mustDecimal(t, "9.99")},
				{ProductID: mugID, Quantity: 3, Price: mustDecimal(t, "4.50")},
			},
		}
	}

	t.Run("item check failure rolls back the whole order", func(t *testing.T) {
		o := validOrder()
		// The quantity check trips on the second of three item inserts;
		// neither the root nor the already-inserted first item may survive.
		o.Items = []order.Item{
			{ProductID: bottleID, Quantity: 2, Price: mustDecimal(t, "9.99")},
			{ProductID: mugID, Quantity: 0, Price: mustDecimal(t, "4.50")},
			{ProductID: bottleID, Quantity: 1, Price: mustDecimal(t, "9.99")},
		}

		_, err := repo.Create(ctx, o)
		require.Error(t, err)

		assert.Equal(t, int64(0), countRows(t, pool, "orders"))
		assert.Equal(t, int64(0), countRows(t, pool, "order_items"))
	})

	t.Run("unknown product rolls back the whole order", func(t *testing.T) {
		o := validOrder()
		o.Items[1].ProductID = 999_999

		_, err := repo.Create(ctx, o)
		require.Error(t, err)

		assert.Equal(t, int64(0), countRows(t, pool, "orders"))
		assert.Equal(t, int64(0), countRows(t, pool, "order_items"))
	})

	t.Run("valid order commits after rolled back attempts", func(t *testing.T) {
		created, err := repo.Create(ctx, validOrder())
		require.NoError(t, err)
		assert.Positive(t, created.ID)

		loaded, err := repo.GetByID(ctx, created.ID, false)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 2)
		assert.True(t, loaded.Total().Equal(mustDecimal(t, "33.48")))

		assert.Equal(t, int64(1), countRows(t, pool, "orders"))
		assert.Equal(t, int64(2), countRows(t, pool, "order_items"))
	})
}
