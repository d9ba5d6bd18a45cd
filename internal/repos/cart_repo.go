package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"tambour/internal/domain"
	"tambour/internal/pricing"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

const cartCols = `
  id, session_cart_id, COALESCE(user_id,'') AS user_id, items_json,
  items_price, tax_price, shipping_price, total_price,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *CartRepo) BySession(sessionCartID string) (domain.Cart, error) {
	var c domain.Cart
	err := r.db.Get(&c, `SELECT `+cartCols+` FROM carts WHERE session_cart_id = ?`, sessionCartID)
	return c, err
}

func (r *CartRepo) ByUser(userID string) (domain.Cart, error) {
	var c domain.Cart
	err := r.db.Get(&c, `SELECT `+cartCols+` FROM carts WHERE user_id = ?`, userID)
	return c, err
}

func (r *CartRepo) Create(c domain.Cart) error {
	var uid any
	if c.UserID != "" {
		uid = c.UserID
	}
	_, err := r.db.Exec(`
	  INSERT INTO carts(id, session_cart_id, user_id, items_json,
	    items_price, tax_price, shipping_price, total_price, created_at)
	  VALUES (?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, c.ID, c.SessionCartID, uid, c.ItemsJSON,
		c.ItemsPrice, c.TaxPrice, c.ShippingPrice, c.TotalPrice)
	return err
}

// SetItems rewrites the item array and the derived prices in one
// conditional statement. The write lands only while the stored array
// still equals prevItemsJSON; a false return means another request
// rewrote the cart in between and the caller must reload and retry.
func (r *CartRepo) SetItems(cartID, prevItemsJSON, itemsJSON string, t pricing.Totals) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE carts
	  SET items_json = ?, items_price = ?, tax_price = ?, shipping_price = ?,
	      total_price = ?, updated_at = ?
	  WHERE id = ? AND items_json = ?
	`, itemsJSON, t.ItemsPrice, t.TaxPrice, t.ShippingPrice, t.TotalPrice,
		time.Now().UTC().Format(time.RFC3339), cartID, prevItemsJSON)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// AdoptForUser links an anonymous session cart to a user that had no
// cart of their own yet.
func (r *CartRepo) AdoptForUser(cartID, userID string) error {
	_, err := r.db.Exec(`UPDATE carts SET user_id = ?, updated_at = ? WHERE id = ?`,
		userID, time.Now().UTC().Format(time.RFC3339), cartID)
	return err
}

// MergeReplace commits a cart merge: the surviving user cart receives the
// merged items/totals and the session cart row is dropped, atomically.
func (r *CartRepo) MergeReplace(userCartID, itemsJSON string, t pricing.Totals, sessionCartRowID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  UPDATE carts
	  SET items_json = ?, items_price = ?, tax_price = ?, shipping_price = ?,
	      total_price = ?, updated_at = ?
	  WHERE id = ?
	`, itemsJSON, t.ItemsPrice, t.TaxPrice, t.ShippingPrice, t.TotalPrice,
		time.Now().UTC().Format(time.RFC3339), userCartID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM carts WHERE id = ?`, sessionCartRowID); err != nil {
		return err
	}
	return tx.Commit()
}

// IsNoRows is a small helper so services don't import database/sql just
// to test for a missing cart.
func IsNoRows(err error) bool { return err == sql.ErrNoRows }
