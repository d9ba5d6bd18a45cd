package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/domain"
	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

type ArticleHandler struct {
	Articles *services.ArticleService
}

func (h *ArticleHandler) List(c *fiber.Ctx) error {
	filter := c.Query("filter", "published")
	switch filter {
	case "all", "published", "draft":
	default:
		return failMsg(c, fiber.StatusBadRequest, "filter must be all, published or draft")
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	result, err := h.Articles.List(filter, page, 0)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", result)
}

// Get resolves by primary key or slug, same dual scheme as products.
func (h *ArticleHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	var (
		detail services.ArticleDetail
		err    error
	)
	if validate.IsUUID(id) {
		detail, err = h.Articles.Get(id)
	} else {
		detail, err = h.Articles.GetBySlug(id)
	}
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", detail)
}

func (h *ArticleHandler) Create(c *fiber.Ctx) error {
	var a domain.Article
	if err := c.BodyParser(&a); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	title, titleOK := validate.Name(a.Title)
	slug, slugOK := validate.Slug(a.Slug)
	if !titleOK || !slugOK {
		return failMsg(c, fiber.StatusBadRequest, "article needs a title and a slug")
	}
	a.Title, a.Slug = title, slug
	created, err := h.Articles.Create(a)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "article.create", map[string]any{"articleId": created.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "article created", "data": created})
}

func (h *ArticleHandler) Update(c *fiber.Ctx) error {
	var a domain.Article
	if err := c.BodyParser(&a); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	a.ID = c.Params("id")
	if err := h.Articles.Update(a); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "article.update", map[string]any{"articleId": a.ID})
	return ok(c, "article updated", nil)
}

func (h *ArticleHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Articles.Delete(id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "article.delete", map[string]any{"articleId": id})
	return ok(c, "article deleted", nil)
}

func (h *ArticleHandler) AddSection(c *fiber.Ctx) error {
	var sec domain.ArticleSection
	if err := c.BodyParser(&sec); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	sec.ArticleID = c.Params("id")
	if sec.Title == "" {
		return failMsg(c, fiber.StatusBadRequest, "section needs a title")
	}
	created, err := h.Articles.AddSection(sec)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "section added", "data": created})
}

func (h *ArticleHandler) UpdateSection(c *fiber.Ctx) error {
	var sec domain.ArticleSection
	if err := c.BodyParser(&sec); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	sec.ID = c.Params("sectionId")
	if err := h.Articles.UpdateSection(sec); err != nil {
		return fail(c, err)
	}
	return ok(c, "section updated", nil)
}

func (h *ArticleHandler) DeleteSection(c *fiber.Ctx) error {
	if err := h.Articles.DeleteSection(c.Params("sectionId")); err != nil {
		return fail(c, err)
	}
	return ok(c, "section deleted", nil)
}

type commentBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *ArticleHandler) AddComment(c *fiber.Ctx) error {
	var body commentBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if body.Body == "" {
		return failMsg(c, fiber.StatusBadRequest, "comment body is required")
	}
	comment, err := h.Articles.AddComment(c.Params("id"), userIDFrom(c), body.Title, body.Body)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "comment added", "data": comment})
}
