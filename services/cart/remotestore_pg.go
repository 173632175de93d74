package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/catalog"
)

// postgresCartStore keeps one row per (shopper_uid, product_uid). The
// product snapshot is stored denormalized with the row, so loading a cart
// needs no join and the snapshot may go stale, just like the local copy.
type postgresCartStore struct {
	db     *sql.DB
	uuider myuuid.UUIDer
}

func NewPostgresCartStore(c context.Context, db *sql.DB, uuider myuuid.UUIDer) (RemoteCartStore, error) {
	_, err := db.ExecContext(c, `CREATE TABLE IF NOT EXISTS cart (
		uid TEXT PRIMARY KEY,
		shopper_uid TEXT NOT NULL,
		product_uid TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		product_snapshot JSONB NOT NULL DEFAULT '{}',
		UNIQUE (shopper_uid, product_uid)
	)`)
	if err != nil {
		return nil, fmt.Errorf("error creating cart table: %s", err)
	}

	return &postgresCartStore{
		db:     db,
		uuider: uuider,
	}, nil
}

func (s *postgresCartStore) Load(c context.Context, shopperUID string) (Cart, error) {
	rows, err := s.db.QueryContext(c,
		`SELECT uid, product_uid, quantity, product_snapshot FROM cart WHERE shopper_uid = $1`,
		shopperUID)
	if err != nil {
		return Cart{}, myerrors.NewUnavailableError(fmt.Errorf("error loading cart of shopper %s: %s", shopperUID, err))
	}
	defer rows.Close()

	cart := Cart{}
	for rows.Next() {
		var line CartLine
		var snapshot []byte
		err := rows.Scan(&line.UID, &line.ProductUID, &line.Quantity, &snapshot)
		if err != nil {
			return Cart{}, myerrors.NewUnavailableError(fmt.Errorf("error scanning cart line: %s", err))
		}

		err = json.Unmarshal(snapshot, &line.Product)
		if err != nil {
			// A broken snapshot should not make the whole cart unreadable
			line.Product = catalog.Product{UID: line.ProductUID}
		}

		cart.Lines = append(cart.Lines, line)
	}
	err = rows.Err()
	if err != nil {
		return Cart{}, myerrors.NewUnavailableError(fmt.Errorf("error iterating cart lines: %s", err))
	}

	return cart, nil
}

func (s *postgresCartStore) UpsertLine(c context.Context, shopperUID string, productUID string, quantity int, snapshot catalog.Product) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error marshalling product snapshot: %s", err))
	}

	_, err = s.db.ExecContext(c,
		`INSERT INTO cart (uid, shopper_uid, product_uid, quantity, product_snapshot)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (shopper_uid, product_uid)
		 DO UPDATE SET quantity = EXCLUDED.quantity, product_snapshot = EXCLUDED.product_snapshot`,
		s.uuider.Create(), shopperUID, productUID, quantity, snapshotJSON)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error upserting cart line (%s, %s): %s", shopperUID, productUID, err))
	}

	return nil
}

func (s *postgresCartStore) RemoveLine(c context.Context, shopperUID string, productUID string) error {
	// Deleting an absent line is a no-op, not an error
	_, err := s.db.ExecContext(c,
		`DELETE FROM cart WHERE shopper_uid = $1 AND product_uid = $2`,
		shopperUID, productUID)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error removing cart line (%s, %s): %s", shopperUID, productUID, err))
	}

	return nil
}

func (s *postgresCartStore) UpdateQuantity(c context.Context, shopperUID string, productUID string, quantity int) error {
	_, err := s.db.ExecContext(c,
		`UPDATE cart SET quantity = $3 WHERE shopper_uid = $1 AND product_uid = $2`,
		shopperUID, productUID, quantity)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error updating quantity of cart line (%s, %s): %s", shopperUID, productUID, err))
	}

	return nil
}

func (s *postgresCartStore) ClearAll(c context.Context, shopperUID string) error {
	_, err := s.db.ExecContext(c,
		`DELETE FROM cart WHERE shopper_uid = $1`,
		shopperUID)
	if err != nil {
		return myerrors.NewUnavailableError(fmt.Errorf("error clearing cart of shopper %s: %s", shopperUID, err))
	}

	return nil
}
