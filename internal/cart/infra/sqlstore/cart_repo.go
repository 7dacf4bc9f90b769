package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS carts (
	session_id TEXT PRIMARY KEY,
	is_open    BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_items (
	session_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	product_id TEXT NOT NULL,
	product    TEXT NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	PRIMARY KEY (session_id, product_id)
);
`

type CartRepo struct {
	db *sqlx.DB
}

func NewCartRepo(db *sqlx.DB) *CartRepo {
	return &CartRepo{db: db}
}

// Migrate creates the cart tables when they do not exist.
func (r *CartRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

type cartRow struct {
	SessionID string    `db:"session_id"`
	IsOpen    bool      `db:"is_open"`
	UpdatedAt time.Time `db:"updated_at"`
}

type itemRow struct {
	Position  int    `db:"position"`
	ProductID string `db:"product_id"`
	Product   string `db:"product"`
	Quantity  int    `db:"quantity"`
}

func (r *CartRepo) execTX(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *CartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	var head cartRow
	err := r.db.GetContext(ctx, &head,
		r.db.Rebind(`SELECT session_id, is_open, updated_at FROM carts WHERE session_id = ?`), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}

	var rows []itemRow
	err = r.db.SelectContext(ctx, &rows,
		r.db.Rebind(`SELECT position, product_id, product, quantity FROM cart_items WHERE session_id = ? ORDER BY position`),
		sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{IsOpen: head.IsOpen}
	for _, row := range rows {
		var p catalog.Product
		if err := json.Unmarshal([]byte(row.Product), &p); err != nil {
			return domain.Cart{}, fmt.Errorf("decode item %s: %w", row.ProductID, err)
		}
		cart.Items = append(cart.Items, domain.CartItem{Product: p, Quantity: row.Quantity})
	}
	return cart, nil
}

// Save replaces the stored cart in one transaction.
func (r *CartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	return r.execTX(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO carts (session_id, is_open, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (session_id) DO UPDATE SET is_open = excluded.is_open, updated_at = excluded.updated_at`),
			sessionID, cart.IsOpen, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cart_items WHERE session_id = ?`), sessionID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}

		for i, it := range cart.Items {
			raw, err := json.Marshal(it.Product)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO cart_items (session_id, position, product_id, product, quantity) VALUES (?, ?, ?, ?, ?)`),
				sessionID, i, it.ID, string(raw), it.Quantity)
			if err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}
		return nil
	})
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	return r.execTX(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cart_items WHERE session_id = ?`), sessionID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM carts WHERE session_id = ?`), sessionID)
		return err
	})
}
