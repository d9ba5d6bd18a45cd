package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"tambour/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
  id, user_id, address_json, payment_method,
  items_price, tax_price, shipping_price, total_price,
  is_paid, COALESCE(paid_at,'') AS paid_at,
  is_delivered, COALESCE(delivered_at,'') AS delivered_at,
  COALESCE(payment_result_json,'') AS payment_result_json, created_at`

// Create inserts the order snapshot and its frozen line items in one
// transaction.
func (r *OrderRepo) Create(o domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, address_json, payment_method,
	    items_price, tax_price, shipping_price, total_price, is_paid, is_delivered, created_at)
	  VALUES (?,?,?,?,?,?,?,?,0,0,CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.AddressJSON, o.PaymentMethod,
		o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, name, slug, image, price, qty)
		  VALUES (?,?,?,?,?,?,?)
		`, o.ID, it.ProductID, it.Name, it.Slug, it.Image, it.Price, it.Qty); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (domain.Order, []domain.OrderItem, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	var items []domain.OrderItem
	if err := r.db.Select(&items, `
	  SELECT order_id, product_id, name, slug, image, price, qty
	  FROM order_items WHERE order_id = ?
	  ORDER BY name
	`, orderID); err != nil {
		return domain.Order{}, nil, err
	}

	return o, items, nil
}

func (r *OrderRepo) Items(orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.Select(&items, `
	  SELECT order_id, product_id, name, slug, image, price, qty
	  FROM order_items WHERE order_id = ?
	`, orderID)
	return items, err
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  WHERE user_id = ?
	  ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT `+orderCols+` FROM orders
	  ORDER BY datetime(created_at) DESC
	  LIMIT ?
	`, limit)
	return out, err
}

// MarkPaid flips unpaid -> paid. The WHERE clause is the idempotency
// gate: a second confirmation matches zero rows and changes nothing.
func (r *OrderRepo) MarkPaid(orderID, resultJSON string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders
	  SET is_paid = 1, paid_at = ?, payment_result_json = ?
	  WHERE id = ? AND is_paid = 0
	`, time.Now().UTC().Format(time.RFC3339), resultJSON, orderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkDelivered flips paid+undelivered -> delivered, same gating idiom.
func (r *OrderRepo) MarkDelivered(orderID string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders
	  SET is_delivered = 1, delivered_at = ?
	  WHERE id = ? AND is_paid = 1 AND is_delivered = 0
	`, time.Now().UTC().Format(time.RFC3339), orderID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Flags reads the lifecycle booleans to classify a failed gate update.
func (r *OrderRepo) Flags(orderID string) (isPaid, isDelivered bool, err error) {
	var row struct {
		IsPaid      bool `db:"is_paid"`
		IsDelivered bool `db:"is_delivered"`
	}
	if err = r.db.Get(&row, `SELECT is_paid, is_delivered FROM orders WHERE id = ?`, orderID); err != nil {
		return false, false, err
	}
	return row.IsPaid, row.IsDelivered, nil
}

// Delete removes an order and its items; used only to unwind a snapshot
// whose stock blocking could not complete.
func (r *OrderRepo) Delete(orderID string) error {
	_, err := r.db.Exec(`DELETE FROM orders WHERE id = ?`, orderID)
	return err
}
