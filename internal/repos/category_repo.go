package repos

import (
	"github.com/jmoiron/sqlx"

	"tambour/internal/domain"
)

// CategoryRepo covers the catalog lookup tables: product categories plus
// the two drum-specification vocabularies.
type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT id, name, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories
	  ORDER BY name
	`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `
	  SELECT id, name, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories WHERE id = ?
	`, id)
	return c, err
}

func (r *CategoryRepo) Create(c domain.Category) error {
	_, err := r.db.Exec(`INSERT INTO categories(id, name) VALUES(?,?)`, c.ID, c.Name)
	return err
}

// ---------- Skin types ----------

func (r *CategoryRepo) ListSkinTypes() ([]domain.SkinType, error) {
	var out []domain.SkinType
	err := r.db.Select(&out, `SELECT id, material FROM skin_types ORDER BY material`)
	return out, err
}

func (r *CategoryRepo) CreateSkinType(s domain.SkinType) error {
	_, err := r.db.Exec(`INSERT INTO skin_types(id, material) VALUES(?,?)`, s.ID, s.Material)
	return err
}

func (r *CategoryRepo) UpdateSkinType(s domain.SkinType) (bool, error) {
	res, err := r.db.Exec(`UPDATE skin_types SET material = ? WHERE id = ?`, s.Material, s.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CategoryRepo) DeleteSkinType(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM skin_types WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- Drum diameters ----------

func (r *CategoryRepo) ListDiameters() ([]domain.DrumDiameter, error) {
	var out []domain.DrumDiameter
	err := r.db.Select(&out, `SELECT id, size FROM drum_diameters ORDER BY size`)
	return out, err
}

func (r *CategoryRepo) CreateDiameter(d domain.DrumDiameter) error {
	_, err := r.db.Exec(`INSERT INTO drum_diameters(id, size) VALUES(?,?)`, d.ID, d.Size)
	return err
}

func (r *CategoryRepo) UpdateDiameter(d domain.DrumDiameter) (bool, error) {
	res, err := r.db.Exec(`UPDATE drum_diameters SET size = ? WHERE id = ?`, d.Size, d.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *CategoryRepo) DeleteDiameter(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM drum_diameters WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
