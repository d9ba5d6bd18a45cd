package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/repos"
	"tambour/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Latest(c *fiber.Ctx) error {
	products, err := h.Catalog.Latest()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", products)
}

func (h *CatalogHandler) Featured(c *fiber.Ctx) error {
	products, err := h.Catalog.Featured()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", products)
}

func (h *CatalogHandler) Product(c *fiber.Ctx) error {
	detail, err := h.Catalog.GetBySlug(c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", detail)
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", cats)
}

func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	diameter, _ := strconv.Atoi(c.Query("diameter"))
	f := repos.SearchFilter{
		Query:       strings.TrimSpace(c.Query("query")),
		CategoryID:  c.Query("category"),
		ProductType: c.Query("productType"),
		SkinType:    c.Query("skinType"),
		Diameter:    diameter,
		Sort:        c.Query("sort"),
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	result, err := h.Catalog.Search(f, page, 0)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", result)
}

func (h *CatalogHandler) SkinTypes(c *fiber.Ctx) error {
	sts, err := h.Catalog.ListSkinTypes()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", sts)
}

func (h *CatalogHandler) Diameters(c *fiber.Ctx) error {
	ds, err := h.Catalog.ListDiameters()
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", ds)
}
