package repos

import (
	"time"

	"github.com/jmoiron/sqlx"

	"tambour/internal/domain"
)

type ArticleRepo struct{ db *sqlx.DB }

func NewArticleRepo(db *sqlx.DB) *ArticleRepo { return &ArticleRepo{db: db} }

const articleCols = `
  id, title, slug, thumbnail, COALESCE(category_id,'') AS category_id,
  is_published, is_featured, banner,
  created_at, COALESCE(updated_at,'') AS updated_at`

// List pages through articles. filter is "all", "published" or "draft".
func (r *ArticleRepo) List(filter string, limit, offset int) ([]domain.Article, int, error) {
	where := `1=1`
	switch filter {
	case "published":
		where = `is_published = 1`
	case "draft":
		where = `is_published = 0`
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM articles WHERE `+where); err != nil {
		return nil, 0, err
	}

	var out []domain.Article
	err := r.db.Select(&out, `
	  SELECT `+articleCols+` FROM articles WHERE `+where+`
	  ORDER BY datetime(created_at) DESC
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, total, err
}

func (r *ArticleRepo) Get(id string) (domain.Article, error) {
	var a domain.Article
	err := r.db.Get(&a, `SELECT `+articleCols+` FROM articles WHERE id = ?`, id)
	return a, err
}

func (r *ArticleRepo) GetBySlug(slug string) (domain.Article, error) {
	var a domain.Article
	err := r.db.Get(&a, `SELECT `+articleCols+` FROM articles WHERE slug = ?`, slug)
	return a, err
}

func (r *ArticleRepo) Create(a domain.Article) error {
	var cat any
	if a.CategoryID != "" {
		cat = a.CategoryID
	}
	_, err := r.db.Exec(`
	  INSERT INTO articles(id, title, slug, thumbnail, category_id, is_published, is_featured, banner, created_at)
	  VALUES (?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, a.ID, a.Title, a.Slug, a.Thumbnail, cat, a.IsPublished, a.IsFeatured, a.Banner)
	return err
}

func (r *ArticleRepo) Update(a domain.Article) (bool, error) {
	var cat any
	if a.CategoryID != "" {
		cat = a.CategoryID
	}
	res, err := r.db.Exec(`
	  UPDATE articles
	  SET title=?, slug=?, thumbnail=?, category_id=?, is_published=?, is_featured=?, banner=?, updated_at=?
	  WHERE id=?
	`, a.Title, a.Slug, a.Thumbnail, cat, a.IsPublished, a.IsFeatured, a.Banner,
		time.Now().UTC().Format(time.RFC3339), a.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ArticleRepo) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- Sections ----------

func (r *ArticleRepo) Sections(articleID string) ([]domain.ArticleSection, error) {
	var out []domain.ArticleSection
	err := r.db.Select(&out, `
	  SELECT id, article_id, title, position, body, image, youtube_url
	  FROM article_sections
	  WHERE article_id = ?
	  ORDER BY position
	`, articleID)
	return out, err
}

func (r *ArticleRepo) CreateSection(s domain.ArticleSection) error {
	_, err := r.db.Exec(`
	  INSERT INTO article_sections(id, article_id, title, position, body, image, youtube_url)
	  VALUES (?,?,?,?,?,?,?)
	`, s.ID, s.ArticleID, s.Title, s.Position, s.Body, s.Image, s.YouTubeURL)
	return err
}

func (r *ArticleRepo) UpdateSection(s domain.ArticleSection) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE article_sections
	  SET title=?, position=?, body=?, image=?, youtube_url=?
	  WHERE id=?
	`, s.Title, s.Position, s.Body, s.Image, s.YouTubeURL, s.ID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ArticleRepo) DeleteSection(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM article_sections WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ---------- Comments ----------

func (r *ArticleRepo) Comments(articleID string) ([]domain.ArticleComment, error) {
	var out []domain.ArticleComment
	err := r.db.Select(&out, `
	  SELECT id, article_id, user_id, title, body, created_at
	  FROM article_comments
	  WHERE article_id = ?
	  ORDER BY datetime(created_at) DESC
	`, articleID)
	return out, err
}

func (r *ArticleRepo) CreateComment(c domain.ArticleComment) error {
	_, err := r.db.Exec(`
	  INSERT INTO article_comments(id, article_id, user_id, title, body, created_at)
	  VALUES (?,?,?,?,?,CURRENT_TIMESTAMP)
	`, c.ID, c.ArticleID, c.UserID, c.Title, c.Body)
	return err
}

// ---------- Article categories ----------

func (r *ArticleRepo) ListCategories() ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.Select(&out, `
	  SELECT id, name, '' AS created_at, '' AS updated_at
	  FROM article_categories ORDER BY name
	`)
	return out, err
}
