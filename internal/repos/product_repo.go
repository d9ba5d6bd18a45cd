package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"tambour/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, category_id, name, slug, description, price, stock, blocked_qty,
  images_json, is_featured, banner,
  COALESCE(code_identifier,'') AS code_identifier, is_published,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) GetBySlug(slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE slug = ?`, slug)
	return p, err
}

func (r *ProductRepo) GetByCode(code string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE code_identifier = ?`, code)
	return p, err
}

func (r *ProductRepo) ListLatest(limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+` FROM products
	  WHERE is_published = 1
	  ORDER BY created_at DESC
	  LIMIT ?`, limit)
	return out, err
}

func (r *ProductRepo) ListFeatured(limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
	  SELECT `+productCols+` FROM products
	  WHERE is_published = 1 AND is_featured = 1
	  ORDER BY created_at DESC
	  LIMIT ?`, limit)
	return out, err
}

// SearchFilter narrows the catalog query; zero values mean "no filter".
type SearchFilter struct {
	Query       string // case-insensitive name substring
	CategoryID  string
	ProductType string // "drum" | "other"
	SkinType    string // skin material, drums only
	Diameter    int    // diameter size in cm, drums only
	Sort        string // "lowest" | "highest" | default newest-first
}

func (r *ProductRepo) Search(f SearchFilter, limit, offset int) ([]domain.Product, int, error) {
	where := `p.is_published = 1`
	args := []any{}
	if f.Query != "" {
		where += ` AND LOWER(p.name) LIKE ?`
		args = append(args, "%"+f.Query+"%")
	}
	if f.CategoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}
	switch f.ProductType {
	case "drum":
		where += ` AND EXISTS (SELECT 1 FROM drums d WHERE d.product_id = p.id)`
	case "other":
		where += ` AND EXISTS (SELECT 1 FROM others o WHERE o.product_id = p.id)`
	}
	if f.SkinType != "" {
		where += ` AND EXISTS (
		  SELECT 1 FROM drums d JOIN skin_types st ON st.id = d.skin_type_id
		  WHERE d.product_id = p.id AND LOWER(st.material) = LOWER(?))`
		args = append(args, f.SkinType)
	}
	if f.Diameter > 0 {
		where += ` AND EXISTS (
		  SELECT 1 FROM drums d JOIN drum_diameters dd ON dd.id = d.diameter_id
		  WHERE d.product_id = p.id AND dd.size = ?)`
		args = append(args, f.Diameter)
	}

	order := `p.created_at DESC`
	switch f.Sort {
	case "lowest":
		order = `p.price ASC`
	case "highest":
		order = `p.price DESC`
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products p WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + productColsPrefixed + ` FROM products p WHERE ` + where +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, sql, args...)
	return out, total, err
}

const productColsPrefixed = `
  p.id, p.category_id, p.name, p.slug, p.description, p.price, p.stock,
  p.blocked_qty, p.images_json, p.is_featured, p.banner,
  COALESCE(p.code_identifier,'') AS code_identifier, p.is_published,
  p.created_at, COALESCE(p.updated_at,'') AS updated_at`

func (r *ProductRepo) Create(p domain.Product) error {
	var code any
	if p.CodeIdentifier != "" {
		code = p.CodeIdentifier
	}
	_, err := r.db.Exec(`
	  INSERT INTO products(id, category_id, name, slug, description, price, stock,
	    images_json, is_featured, banner, code_identifier, is_published, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, p.Stock,
		p.ImagesJSON, p.IsFeatured, p.Banner, code, p.IsPublished)
	return err
}

// Update rewrites the editable fields. The ledger counters are out of
// scope here on purpose: stock moves only through the conditional updates
// below, never through the admin editor.
func (r *ProductRepo) Update(p domain.Product) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products SET category_id=?, name=?, slug=?, description=?, price=?,
	    images_json=?, is_featured=?, banner=?, is_published=?, updated_at=?
	  WHERE id=?
	`, p.CategoryID, p.Name, p.Slug, p.Description, p.Price,
		p.ImagesJSON, p.IsFeatured, p.Banner, p.IsPublished,
		time.Now().UTC().Format(time.RFC3339), p.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ProductRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- Ledger counter updates ----------
//
// Each mutation is a single conditional UPDATE so the check and the write
// cannot interleave with a concurrent caller on the same row. A zero
// RowsAffected result means the precondition failed; the caller reads the
// counters to classify the violation.

// BlockUnits reserves qty units: stock -> blocked_qty.
func (r *ProductRepo) BlockUnits(id string, qty int) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET stock = stock - ?, blocked_qty = blocked_qty + ?, updated_at = ?
	  WHERE id = ? AND stock >= ?
	`, qty, qty, time.Now().UTC().Format(time.RFC3339), id, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReleaseUnits returns qty reserved units: blocked_qty -> stock.
func (r *ProductRepo) ReleaseUnits(id string, qty int) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET stock = stock + ?, blocked_qty = blocked_qty - ?, updated_at = ?
	  WHERE id = ? AND blocked_qty >= ?
	`, qty, qty, time.Now().UTC().Format(time.RFC3339), id, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ConsumeBlocked removes qty units from the reservation for good (sale
// completed from blocked units).
func (r *ProductRepo) ConsumeBlocked(id string, qty int) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET blocked_qty = blocked_qty - ?, updated_at = ?
	  WHERE id = ? AND blocked_qty >= ?
	`, qty, time.Now().UTC().Format(time.RFC3339), id, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ConsumeStock removes qty units straight from available stock (direct
// point-of-sale without a prior reservation).
func (r *ProductRepo) ConsumeStock(id string, qty int) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET stock = stock - ?, updated_at = ?
	  WHERE id = ? AND stock >= ?
	`, qty, time.Now().UTC().Format(time.RFC3339), id, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Counters reads the two persisted ledger counters, used to classify a
// failed conditional update. sql.ErrNoRows means the product is gone.
func (r *ProductRepo) Counters(id string) (stock, blocked int, err error) {
	var row struct {
		Stock   int `db:"stock"`
		Blocked int `db:"blocked_qty"`
	}
	if err = r.db.Get(&row, `SELECT stock, blocked_qty FROM products WHERE id = ?`, id); err != nil {
		return 0, 0, err
	}
	return row.Stock, row.Blocked, nil
}

// ---------- Specifications ----------

func (r *ProductRepo) GetDrum(productID string) (domain.Drum, error) {
	var d domain.Drum
	err := r.db.Get(&d, `SELECT product_id, skin_type_id, diameter_id FROM drums WHERE product_id = ?`, productID)
	return d, err
}

func (r *ProductRepo) GetOther(productID string) (domain.Other, error) {
	var o domain.Other
	err := r.db.Get(&o, `SELECT product_id, color, material, size FROM others WHERE product_id = ?`, productID)
	return o, err
}

func (r *ProductRepo) CreateDrum(d domain.Drum) error {
	_, err := r.db.Exec(`INSERT INTO drums(product_id, skin_type_id, diameter_id) VALUES(?,?,?)`,
		d.ProductID, d.SkinTypeID, d.DiameterID)
	return err
}

func (r *ProductRepo) CreateOther(o domain.Other) error {
	_, err := r.db.Exec(`INSERT INTO others(product_id, color, material, size) VALUES(?,?,?,?)`,
		o.ProductID, o.Color, o.Material, o.Size)
	return err
}

// HasSpecification reports whether either specification row exists.
func (r *ProductRepo) HasSpecification(productID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `
	  SELECT (SELECT COUNT(*) FROM drums WHERE product_id = ?)
	       + (SELECT COUNT(*) FROM others WHERE product_id = ?)
	`, productID, productID)
	return n > 0, err
}

// AdjustStock sets the available counter directly (admin restock).
func (r *ProductRepo) AdjustStock(id string, stock int) (bool, error) {
	res, err := r.db.Exec(`UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`,
		stock, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
