package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"tambour/internal/domain"
	"tambour/internal/repos"
)

const (
	latestProductsLimit  = 4
	defaultCatalogLimit  = 12
	featuredProductLimit = 4
)

var ErrSpecExists = errors.New("product already has a specification")

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) CreateCategory(name string) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), Name: name}
	if err := s.Cats.Create(c); err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Get(c.ID)
}

func (s *CatalogService) Latest() ([]domain.Product, error) {
	return s.Prods.ListLatest(latestProductsLimit)
}

func (s *CatalogService) Featured() ([]domain.Product, error) {
	return s.Prods.ListFeatured(featuredProductLimit)
}

// ProductDetail is a storefront product with its resolved specification.
type ProductDetail struct {
	domain.Product
	Drum  *domain.Drum  `json:"drum,omitempty"`
	Other *domain.Other `json:"other,omitempty"`
}

func (s *CatalogService) GetBySlug(slug string) (ProductDetail, error) {
	p, err := s.Prods.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProductDetail{}, ErrProductNotFound
		}
		return ProductDetail{}, err
	}
	return s.withSpec(p)
}

func (s *CatalogService) withSpec(p domain.Product) (ProductDetail, error) {
	d := ProductDetail{Product: p}
	if drum, err := s.Prods.GetDrum(p.ID); err == nil {
		d.Drum = &drum
		return d, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return ProductDetail{}, err
	}
	if other, err := s.Prods.GetOther(p.ID); err == nil {
		d.Other = &other
	} else if !errors.Is(err, sql.ErrNoRows) {
		return ProductDetail{}, err
	}
	return d, nil
}

type SearchPage struct {
	Products   []domain.Product `json:"products"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
}

func (s *CatalogService) Search(f repos.SearchFilter, page, pageSize int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultCatalogLimit
	}
	offset := (page - 1) * pageSize

	products, total, err := s.Prods.Search(f, pageSize, offset)
	if err != nil {
		return SearchPage{}, err
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return SearchPage{Products: products, TotalPages: pages, Page: page}, nil
}

// ---------- Admin product editor ----------

func (s *CatalogService) CreateProduct(p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ImagesJSON == "" {
		p.ImagesJSON = "[]"
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(p.ID)
}

func (s *CatalogService) UpdateProduct(p domain.Product) (domain.Product, error) {
	ok, err := s.Prods.Update(p)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return s.Prods.Get(p.ID)
}

// DeleteProduct removes a catalog entry. Order items reference products
// even though they carry frozen copies, so a product that ever sold
// stays; unpublish it instead.
func (s *CatalogService) DeleteProduct(id string) error {
	ok, err := s.Prods.Delete(id)
	if err != nil {
		if repos.IsConstraint(err) {
			return ErrProductInUse
		}
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

// SetStock is the admin restock path. It overwrites the available
// counter directly; blocked units are untouched because restocking is
// not a reservation event.
func (s *CatalogService) SetStock(id string, stock int) error {
	if stock < 0 {
		return ErrQuantity
	}
	ok, err := s.Prods.AdjustStock(id, stock)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

// AttachDrumSpec gives a base product its drum specification. A product
// carries at most one specification of either kind.
func (s *CatalogService) AttachDrumSpec(d domain.Drum) error {
	if _, err := s.Prods.Get(d.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	has, err := s.Prods.HasSpecification(d.ProductID)
	if err != nil {
		return err
	}
	if has {
		return ErrSpecExists
	}
	return s.Prods.CreateDrum(d)
}

func (s *CatalogService) AttachOtherSpec(o domain.Other) error {
	if _, err := s.Prods.Get(o.ProductID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	has, err := s.Prods.HasSpecification(o.ProductID)
	if err != nil {
		return err
	}
	if has {
		return ErrSpecExists
	}
	return s.Prods.CreateOther(o)
}

// ---------- Specification vocabularies ----------

func (s *CatalogService) ListSkinTypes() ([]domain.SkinType, error) { return s.Cats.ListSkinTypes() }

func (s *CatalogService) CreateSkinType(material string) (domain.SkinType, error) {
	st := domain.SkinType{ID: uuid.NewString(), Material: material}
	if err := s.Cats.CreateSkinType(st); err != nil {
		return domain.SkinType{}, err
	}
	return st, nil
}

func (s *CatalogService) UpdateSkinType(st domain.SkinType) error {
	ok, err := s.Cats.UpdateSkinType(st)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) DeleteSkinType(id string) error {
	ok, err := s.Cats.DeleteSkinType(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) ListDiameters() ([]domain.DrumDiameter, error) { return s.Cats.ListDiameters() }

func (s *CatalogService) CreateDiameter(size int) (domain.DrumDiameter, error) {
	d := domain.DrumDiameter{ID: uuid.NewString(), Size: size}
	if err := s.Cats.CreateDiameter(d); err != nil {
		return domain.DrumDiameter{}, err
	}
	return d, nil
}

func (s *CatalogService) UpdateDiameter(d domain.DrumDiameter) error {
	ok, err := s.Cats.UpdateDiameter(d)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) DeleteDiameter(id string) error {
	ok, err := s.Cats.DeleteDiameter(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
