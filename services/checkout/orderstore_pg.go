package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MarcGrol/shopfront/lib/myerrors"
)

type postgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(c context.Context, db *sql.DB) (OrderStore, error) {
	_, err := db.ExecContext(c, `CREATE TABLE IF NOT EXISTS orders (
		uid TEXT PRIMARY KEY,
		shopper_uid TEXT NOT NULL,
		shopper_name TEXT NOT NULL DEFAULT '',
		shopper_email TEXT NOT NULL DEFAULT '',
		total_amount_in_cents BIGINT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		last_modified TIMESTAMPTZ
	)`)
	if err != nil {
		return nil, fmt.Errorf("error creating orders table: %s", err)
	}

	_, err = db.ExecContext(c, `CREATE TABLE IF NOT EXISTS order_items (
		uid TEXT PRIMARY KEY,
		order_uid TEXT NOT NULL REFERENCES orders (uid),
		product_uid TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price_in_cents BIGINT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("error creating order_items table: %s", err)
	}

	return &postgresOrderStore{
		db: db,
	}, nil
}

func (s *postgresOrderStore) CreateOrder(c context.Context, order Order, items []OrderItem) error {
	tx, err := s.db.BeginTx(c, nil)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error starting transaction: %s", err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(c,
		`INSERT INTO orders (uid, shopper_uid, shopper_name, shopper_email, total_amount_in_cents, currency, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.UID, order.ShopperUID, order.ShopperName, order.ShopperEmail,
		order.TotalAmountInCents, order.Currency, order.Status, order.CreatedAt)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error storing order %s: %s", order.UID, err))
	}

	for _, item := range items {
		_, err = tx.ExecContext(c,
			`INSERT INTO order_items (uid, order_uid, product_uid, product_name, quantity, price_in_cents)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			item.UID, order.UID, item.ProductUID, item.ProductName, item.Quantity, item.PriceInCents)
		if err != nil {
			return myerrors.NewUnavailableError(fmt.Errorf("error storing item of order %s: %s", order.UID, err))
		}
	}

	err = tx.Commit()
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error committing order %s: %s", order.UID, err))
	}

	return nil
}

func (s *postgresOrderStore) GetOrder(c context.Context, orderUID string) (Order, bool, error) {
	order := Order{}
	err := s.db.QueryRowContext(c,
		`SELECT uid, shopper_uid, shopper_name, shopper_email, total_amount_in_cents, currency, status, created_at, last_modified
		 FROM orders WHERE uid = $1`, orderUID).
		Scan(&order.UID, &order.ShopperUID, &order.ShopperName, &order.ShopperEmail,
			&order.TotalAmountInCents, &order.Currency, &order.Status, &order.CreatedAt, &order.LastModified)
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, myerrors.NewUnavailableError(fmt.Errorf("error fetching order %s: %s", orderUID, err))
	}

	return order, true, nil
}

func (s *postgresOrderStore) UpdateStatus(c context.Context, orderUID string, status OrderStatus, lastModified time.Time) error {
	_, err := s.db.ExecContext(c,
		`UPDATE orders SET status = $2, last_modified = $3 WHERE uid = $1`,
		orderUID, status, lastModified)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error updating status of order %s: %s", orderUID, err))
	}

	return nil
}

func (s *postgresOrderStore) ListOrders(c context.Context, shopperUID string) ([]Order, error) {
	rows, err := s.db.QueryContext(c,
		`SELECT uid, shopper_uid, shopper_name, shopper_email, total_amount_in_cents, currency, status, created_at, last_modified
		 FROM orders WHERE shopper_uid = $1 ORDER BY created_at DESC`, shopperUID)
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error listing orders of shopper %s: %s", shopperUID, err))
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		order := Order{}
		err := rows.Scan(&order.UID, &order.ShopperUID, &order.ShopperName, &order.ShopperEmail,
			&order.TotalAmountInCents, &order.Currency, &order.Status, &order.CreatedAt, &order.LastModified)
		if err != nil {
			return nil, myerrors.NewUnavailableError(fmt.Errorf("error scanning order: %s", err))
		}
		orders = append(orders, order)
	}
	err = rows.Err()
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error iterating orders: %s", err))
	}

	return orders, nil
}

func (s *postgresOrderStore) ListItems(c context.Context, orderUID string) ([]OrderItem, error) {
	rows, err := s.db.QueryContext(c,
		`SELECT uid, order_uid, product_uid, product_name, quantity, price_in_cents
		 FROM order_items WHERE order_uid = $1`, orderUID)
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error listing items of order %s: %s", orderUID, err))
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		item := OrderItem{}
		err := rows.Scan(&item.UID, &item.OrderUID, &item.ProductUID, &item.ProductName, &item.Quantity, &item.PriceInCents)
		if err != nil {
			return nil, myerrors.NewUnavailableError(fmt.Errorf("error scanning order item: %s", err))
		}
		items = append(items, item)
	}
	err = rows.Err()
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error iterating order items: %s", err))
	}

	return items, nil
}
