package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"tambour/internal/domain"
	"tambour/internal/repos"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrSectionNotFound = errors.New("section not found")
)

const defaultArticlePageSize = 6

// ArticleService backs the blog and its multi-step editor: an article is
// created first, then its sections are added one by one at explicit
// positions.
type ArticleService struct {
	Articles *repos.ArticleRepo
}

func NewArticleService(articles *repos.ArticleRepo) *ArticleService {
	return &ArticleService{Articles: articles}
}

type ArticlePage struct {
	Articles   []domain.Article `json:"articles"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
}

// List pages through articles; filter is "all", "published" or "draft".
func (s *ArticleService) List(filter string, page, pageSize int) (ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultArticlePageSize
	}
	articles, total, err := s.Articles.List(filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return ArticlePage{}, err
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return ArticlePage{Articles: articles, TotalPages: pages, Page: page}, nil
}

// ArticleDetail bundles an article with its ordered sections and comments.
type ArticleDetail struct {
	domain.Article
	Sections []domain.ArticleSection `json:"sections"`
	Comments []domain.ArticleComment `json:"comments"`
}

func (s *ArticleService) Get(id string) (ArticleDetail, error) {
	a, err := s.Articles.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ArticleDetail{}, ErrArticleNotFound
		}
		return ArticleDetail{}, err
	}
	return s.detail(a)
}

func (s *ArticleService) GetBySlug(slug string) (ArticleDetail, error) {
	a, err := s.Articles.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ArticleDetail{}, ErrArticleNotFound
		}
		return ArticleDetail{}, err
	}
	return s.detail(a)
}

func (s *ArticleService) detail(a domain.Article) (ArticleDetail, error) {
	sections, err := s.Articles.Sections(a.ID)
	if err != nil {
		return ArticleDetail{}, err
	}
	comments, err := s.Articles.Comments(a.ID)
	if err != nil {
		return ArticleDetail{}, err
	}
	return ArticleDetail{Article: a, Sections: sections, Comments: comments}, nil
}

func (s *ArticleService) Create(a domain.Article) (domain.Article, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.Articles.Create(a); err != nil {
		return domain.Article{}, err
	}
	return s.Articles.Get(a.ID)
}

func (s *ArticleService) Update(a domain.Article) error {
	ok, err := s.Articles.Update(a)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArticleNotFound
	}
	return nil
}

func (s *ArticleService) Delete(id string) error {
	ok, err := s.Articles.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArticleNotFound
	}
	return nil
}

func (s *ArticleService) AddSection(sec domain.ArticleSection) (domain.ArticleSection, error) {
	if _, err := s.Articles.Get(sec.ArticleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ArticleSection{}, ErrArticleNotFound
		}
		return domain.ArticleSection{}, err
	}
	if sec.ID == "" {
		sec.ID = uuid.NewString()
	}
	if err := s.Articles.CreateSection(sec); err != nil {
		return domain.ArticleSection{}, err
	}
	return sec, nil
}

func (s *ArticleService) UpdateSection(sec domain.ArticleSection) error {
	ok, err := s.Articles.UpdateSection(sec)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSectionNotFound
	}
	return nil
}

func (s *ArticleService) DeleteSection(id string) error {
	ok, err := s.Articles.DeleteSection(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSectionNotFound
	}
	return nil
}

func (s *ArticleService) AddComment(articleID, userID, title, body string) (domain.ArticleComment, error) {
	if _, err := s.Articles.Get(articleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ArticleComment{}, ErrArticleNotFound
		}
		return domain.ArticleComment{}, err
	}
	c := domain.ArticleComment{
		ID:        uuid.NewString(),
		ArticleID: articleID,
		UserID:    userID,
		Title:     title,
		Body:      body,
	}
	if err := s.Articles.CreateComment(c); err != nil {
		return domain.ArticleComment{}, err
	}
	return c, nil
}

func (s *ArticleService) ListCategories() ([]domain.Category, error) {
	return s.Articles.ListCategories()
}
