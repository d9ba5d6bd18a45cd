package repos

import (
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog/users if the DB is empty (idempotent; safe to run every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// IsConstraint reports whether err is a sqlite constraint violation
// (unique, check, or foreign key), in any of its extended forms.
func IsConstraint(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Product categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Drum specification lookup tables
CREATE TABLE IF NOT EXISTS skin_types(
  id TEXT PRIMARY KEY,
  material TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS drum_diameters(
  id TEXT PRIMARY KEY,
  size INTEGER NOT NULL UNIQUE CHECK (size > 0)
);

-- Products: stock and blocked_qty are the ledger counters; sold units
-- leave both (declare-sale decrements without a matching increment).
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  blocked_qty INTEGER NOT NULL DEFAULT 0 CHECK (blocked_qty >= 0),
  images_json TEXT NOT NULL DEFAULT '[]',
  is_featured INTEGER NOT NULL DEFAULT 0,
  banner TEXT NOT NULL DEFAULT '',
  code_identifier TEXT UNIQUE,
  is_published INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Category-specific specifications: at most one of drums/others per product
CREATE TABLE IF NOT EXISTS drums(
  product_id TEXT PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
  skin_type_id TEXT NOT NULL REFERENCES skin_types(id) ON DELETE RESTRICT,
  diameter_id TEXT NOT NULL REFERENCES drum_diameters(id) ON DELETE RESTRICT
);
CREATE TABLE IF NOT EXISTS others(
  product_id TEXT PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
  color TEXT NOT NULL DEFAULT '',
  material TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT ''
);

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Carts: one row per owner, items as a JSON array with price snapshots,
-- derived prices stored alongside and rewritten on every mutation.
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_cart_id TEXT UNIQUE NOT NULL,
  user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  items_json TEXT NOT NULL DEFAULT '[]',
  items_price NUMERIC NOT NULL DEFAULT 0,
  tax_price NUMERIC NOT NULL DEFAULT 0,
  shipping_price NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_carts_user ON carts(user_id);

-- Orders: immutable snapshots; only the paid/delivered flags move forward
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  address_json TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  items_price NUMERIC NOT NULL,
  tax_price NUMERIC NOT NULL,
  shipping_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at TEXT,
  is_delivered INTEGER NOT NULL DEFAULT 0,
  delivered_at TEXT,
  payment_result_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  PRIMARY KEY (order_id, product_id)
);

-- Blog
CREATE TABLE IF NOT EXISTS article_categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS articles(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  thumbnail TEXT NOT NULL DEFAULT '',
  category_id TEXT REFERENCES article_categories(id) ON DELETE SET NULL,
  is_published INTEGER NOT NULL DEFAULT 0,
  is_featured INTEGER NOT NULL DEFAULT 0,
  banner TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(is_published);

CREATE TABLE IF NOT EXISTS article_sections(
  id TEXT PRIMARY KEY,
  article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
  title TEXT NOT NULL DEFAULT '',
  position INTEGER NOT NULL CHECK (position >= 0),
  body TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  youtube_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sections_article ON article_sections(article_id, position);

CREATE TABLE IF NOT EXISTS article_comments(
  id TEXT PRIMARY KEY,
  article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES users(id),
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_comments_article ON article_comments(article_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/specifications/products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('11111111-1111-4111-8111-111111111111','Tambours traditionnels'),
	  ('22222222-2222-4222-8222-222222222222','Accessoires')`)

	tx.MustExec(`INSERT INTO skin_types(id,material) VALUES
	  ('a1000000-0000-4000-8000-000000000001','Chevre'),
	  ('a1000000-0000-4000-8000-000000000002','Cerf'),
	  ('a1000000-0000-4000-8000-000000000003','Bison')`)

	tx.MustExec(`INSERT INTO drum_diameters(id,size) VALUES
	  ('b1000000-0000-4000-8000-000000000001',35),
	  ('b1000000-0000-4000-8000-000000000002',40),
	  ('b1000000-0000-4000-8000-000000000003',45),
	  ('b1000000-0000-4000-8000-000000000004',50)`)

	tx.MustExec(`INSERT INTO products(id,category_id,name,slug,description,price,stock,images_json,is_featured,code_identifier,is_published) VALUES
	  ('c1000000-0000-4000-8000-000000000001','11111111-1111-4111-8111-111111111111',
	   'Tambour chamanique 40cm','tambour-chamanique-40',
	   'Tambour artisanal, peau de chevre, cadre en frene.',249.00,5,
	   '["products/tambour-chamanique-40/main.jpg"]',1,'TAM-0001',1),
	  ('c1000000-0000-4000-8000-000000000002','11111111-1111-4111-8111-111111111111',
	   'Tambour de cercle 50cm','tambour-de-cercle-50',
	   'Grand tambour de cercle, peau de bison.',389.00,2,
	   '["products/tambour-de-cercle-50/main.jpg"]',1,'TAM-0002',1),
	  ('c1000000-0000-4000-8000-000000000003','22222222-2222-4222-8222-222222222222',
	   'Mailloche feutre','mailloche-feutre',
	   'Mailloche artisanale, tete en feutre de laine.',29.00,20,
	   '["products/mailloche-feutre/main.jpg"]',0,'ACC-0001',1)`)

	tx.MustExec(`INSERT INTO drums(product_id,skin_type_id,diameter_id) VALUES
	  ('c1000000-0000-4000-8000-000000000001','a1000000-0000-4000-8000-000000000001','b1000000-0000-4000-8000-000000000002'),
	  ('c1000000-0000-4000-8000-000000000002','a1000000-0000-4000-8000-000000000003','b1000000-0000-4000-8000-000000000004')`)

	tx.MustExec(`INSERT INTO others(product_id,color,material,size) VALUES
	  ('c1000000-0000-4000-8000-000000000003','naturel','frene/feutre','38cm')`)

	tx.MustExec(`INSERT INTO article_categories(id,name) VALUES
	  ('d1000000-0000-4000-8000-000000000001','Fabrication'),
	  ('d1000000-0000-4000-8000-000000000002','Entretien')`)

	return tx.Commit()
}

// seedUsers ensures one ADMIN and one USER exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("e1000000-0000-4000-8000-000000000001", "admin@tambour.test", "Admin", "ADMIN", "Passw0rd!"),
		mk("e1000000-0000-4000-8000-000000000002", "claire@tambour.test", "Claire", "USER", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
