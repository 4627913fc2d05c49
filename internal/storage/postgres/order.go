package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (
		customer_id, customer_email, supplier_id, order_date, status,
		bill_street, bill_city, bill_region, bill_postcode, bill_country,
		ship_street, ship_city, ship_region, ship_postcode, ship_country)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id`

	insertItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
	VALUES ($1, $2, $3, $4)`

	orderColumns = `id, customer_id, customer_email, supplier_id, order_date, status,
		bill_street, bill_city, bill_region, bill_postcode, bill_country,
		ship_street, ship_city, ship_region, ship_postcode, ship_country`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getItemsSQL = `SELECT order_id, product_id, quantity, price, ''
	FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`

	getItemsRelatedSQL = `SELECT i.order_id, i.product_id, i.quantity, i.price, p.name
	FROM order_items i JOIN products p ON p.id = i.product_id
	WHERE i.order_id = ANY($1) ORDER BY i.order_id, i.id`

	getSupplierNamesSQL = `SELECT id, name FROM suppliers WHERE id = ANY($1)`

	deleteItemsSQL = `DELETE FROM order_items WHERE order_id = $1`
	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order root and all item rows in one transaction. A
// failure on any item aborts the whole order; no partial commit is
// observable.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var ship [5]*string
	if a := o.DeliveryAddress; a != nil {
		ship = [5]*string{&a.Street, &a.City, &a.Region, &a.PostalCode, &a.Country}
	}

	var id int64
	err = tx.QueryRow(ctx, insertOrderSQL,
		o.CustomerID, o.CustomerEmail, o.SupplierID, o.OrderDate, string(o.Status),
		o.BillingAddress.Street, o.BillingAddress.City, o.BillingAddress.Region,
		o.BillingAddress.PostalCode, o.BillingAddress.Country,
		ship[0], ship[1], ship[2], ship[3], ship[4],
	).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(insertItemSQL, id, it.ProductID, it.Quantity, it.Price)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, errors.Wrap(err, "insert order items")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit order")
	}

	persisted := *o
	persisted.ID = id
	return &persisted, nil
}

// GetByID returns the order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id int64, includeRelated bool) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	result := []order.Order{o}
	if err := r.loadItems(ctx, result, includeRelated); err != nil {
		return nil, err
	}
	if includeRelated {
		if err := r.loadSupplierNames(ctx, result); err != nil {
			return nil, err
		}
	}
	return &result[0], nil
}

// List returns one page of orders plus the total count. Pagination input is
// validated here, before any query runs; it is never silently clamped.
// Ordering is deterministic: order_date descending, id as tie-break.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]order.Order, int64, error) {
	if f.Page < 1 {
		return nil, 0, order.Violations{{Field: "page", Message: "must be at least 1"}}
	}
	if f.PageSize < 1 {
		return nil, 0, order.Violations{{Field: "pageSize", Message: "must be at least 1"}}
	}

	where, args := buildFilter(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	pageSQL := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY order_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan orders")
	}

	// Split loading: the related collections are fetched in a second pass
	// keyed by the page's ids, never joined into the root query.
	if f.IncludeRelated && len(orders) > 0 {
		if err := r.loadItems(ctx, orders, true); err != nil {
			return nil, 0, err
		}
		if err := r.loadSupplierNames(ctx, orders); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// Delete removes the order and its item rows in one transaction. It reports
// whether an order row existed.
func (r *OrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, deleteItemsSQL, id); err != nil {
		return false, errors.Wrapf(err, "delete items of order %d", id)
	}

	tag, err := tx.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return false, errors.Wrapf(err, "delete order %d", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "commit delete")
	}

	return tag.RowsAffected() > 0, nil
}

// loadItems fetches the item collections for the given orders in one query
// keyed by order id and distributes them in place.
func (r *OrderRepository) loadItems(ctx context.Context, orders []order.Order, related bool) error {
	ids := make([]int64, len(orders))
	index := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	sql := getItemsSQL
	if related {
		sql = getItemsRelatedSQL
	}
	rows, err := r.pool.Query(ctx, sql, ids)
	if err != nil {
		return errors.Wrap(err, "load order items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID int64
			it      order.Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Price, &it.ProductName); err != nil {
			return errors.Wrap(err, "scan order item")
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return errors.Wrap(rows.Err(), "iterate order items")
}

// loadSupplierNames fetches the supplier names for the given orders keyed by
// the page's distinct supplier ids.
func (r *OrderRepository) loadSupplierNames(ctx context.Context, orders []order.Order) error {
	seen := make(map[int64]struct{}, 2)
	ids := make([]int64, 0, 2)
	for i := range orders {
		if _, ok := seen[orders[i].SupplierID]; ok {
			continue
		}
		seen[orders[i].SupplierID] = struct{}{}
		ids = append(ids, orders[i].SupplierID)
	}

	rows, err := r.pool.Query(ctx, getSupplierNamesSQL, ids)
	if err != nil {
		return errors.Wrap(err, "load supplier names")
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return errors.Wrap(err, "scan supplier name")
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate supplier names")
	}

	for i := range orders {
		orders[i].SupplierName = names[orders[i].SupplierID]
	}
	return nil
}

func buildFilter(f order.Filter) (where string, args []any) {
	switch {
	case f.CustomerID != nil:
		return " WHERE customer_id = $1", []any{*f.CustomerID}
	case f.SupplierID != nil:
		return " WHERE supplier_id = $1", []any{*f.SupplierID}
	default:
		return "", nil
	}
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o    order.Order
		ship [5]*string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.CustomerEmail, &o.SupplierID, &o.OrderDate, &o.Status,
		&o.BillingAddress.Street, &o.BillingAddress.City, &o.BillingAddress.Region,
		&o.BillingAddress.PostalCode, &o.BillingAddress.Country,
		&ship[0], &ship[1], &ship[2], &ship[3], &ship[4],
	)
	if err != nil {
		return o, err
	}

	if ship[0] != nil {
		o.DeliveryAddress = &order.Address{
			Street:     *ship[0],
			City:       deref(ship[1]),
			Region:     deref(ship[2]),
			PostalCode: deref(ship[3]),
			Country:    deref(ship[4]),
		}
	}
	return o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
