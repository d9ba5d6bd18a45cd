package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/domain"
	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

const adminOrderListLimit = 50

// AdminHandler covers the back-office surface: product and
// specification management, the lookup vocabularies, and order review.
type AdminHandler struct {
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

func validProduct(p domain.Product) (domain.Product, string) {
	name, nameOK := validate.Name(p.Name)
	if !nameOK {
		return p, "product needs a name"
	}
	slug, slugOK := validate.Slug(p.Slug)
	if !slugOK {
		return p, "product needs a url-safe slug"
	}
	if _, priceOK := validate.Price(p.Price.String()); !priceOK {
		return p, "price must be non-negative with at most two decimals"
	}
	if p.Stock < 0 {
		return p, "stock cannot be negative"
	}
	if p.CodeIdentifier != "" {
		code, codeOK := validate.Code(p.CodeIdentifier)
		if !codeOK {
			return p, "invalid business code"
		}
		p.CodeIdentifier = code
	}
	p.Name, p.Slug = name, slug
	return p, ""
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	p, msg := validProduct(p)
	if msg != "" {
		return failMsg(c, fiber.StatusBadRequest, msg)
	}
	created, err := h.Catalog.CreateProduct(p)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"productId": created.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "product created", "data": created})
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	p.ID = c.Params("id")
	p, msg := validProduct(p)
	if msg != "" {
		return failMsg(c, fiber.StatusBadRequest, msg)
	}
	updated, err := h.Catalog.UpdateProduct(p)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"productId": updated.ID})
	return ok(c, "product updated", updated)
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"productId": id})
	return ok(c, "product deleted", nil)
}

type stockBody struct {
	Stock int `json:"stock"`
}

// UpdateStock restocks a product. Reservations in flight keep their
// blocked units.
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	var body stockBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	id := c.Params("id")
	if err := h.Catalog.SetStock(id, body.Stock); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.restock", map[string]any{"productId": id, "stock": body.Stock})
	return ok(c, "stock updated", nil)
}

// AttachDrumSpec completes step two of the product editor for drums.
// A product takes exactly one specification, drum or other, ever.
func (h *AdminHandler) AttachDrumSpec(c *fiber.Ctx) error {
	var d domain.Drum
	if err := c.BodyParser(&d); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	d.ProductID = c.Params("id")
	if d.SkinTypeID == "" || d.DiameterID == "" {
		return failMsg(c, fiber.StatusBadRequest, "skinTypeId and diameterId are required")
	}
	if err := h.Catalog.AttachDrumSpec(d); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "drum specification attached", "data": d})
}

func (h *AdminHandler) AttachOtherSpec(c *fiber.Ctx) error {
	var o domain.Other
	if err := c.BodyParser(&o); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	o.ProductID = c.Params("id")
	if err := h.Catalog.AttachOtherSpec(o); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "specification attached", "data": o})
}

type skinTypeBody struct {
	Material string `json:"material"`
}

func (h *AdminHandler) CreateSkinType(c *fiber.Ctx) error {
	var body skinTypeBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	material, matOK := validate.Name(body.Material)
	if !matOK {
		return failMsg(c, fiber.StatusBadRequest, "material is required")
	}
	st, err := h.Catalog.CreateSkinType(material)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "skin type created", "data": st})
}

func (h *AdminHandler) UpdateSkinType(c *fiber.Ctx) error {
	var body skinTypeBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	material, matOK := validate.Name(body.Material)
	if !matOK {
		return failMsg(c, fiber.StatusBadRequest, "material is required")
	}
	st := domain.SkinType{ID: c.Params("id"), Material: material}
	if err := h.Catalog.UpdateSkinType(st); err != nil {
		return fail(c, err)
	}
	return ok(c, "skin type updated", st)
}

func (h *AdminHandler) DeleteSkinType(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteSkinType(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, "skin type deleted", nil)
}

type diameterBody struct {
	Size int `json:"size"`
}

func (h *AdminHandler) CreateDiameter(c *fiber.Ctx) error {
	var body diameterBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if body.Size <= 0 {
		return failMsg(c, fiber.StatusBadRequest, "size must be a positive number of centimeters")
	}
	d, err := h.Catalog.CreateDiameter(body.Size)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "diameter created", "data": d})
}

func (h *AdminHandler) UpdateDiameter(c *fiber.Ctx) error {
	var body diameterBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if body.Size <= 0 {
		return failMsg(c, fiber.StatusBadRequest, "size must be a positive number of centimeters")
	}
	d := domain.DrumDiameter{ID: c.Params("id"), Size: body.Size}
	if err := h.Catalog.UpdateDiameter(d); err != nil {
		return fail(c, err)
	}
	return ok(c, "diameter updated", d)
}

func (h *AdminHandler) DeleteDiameter(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteDiameter(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return ok(c, "diameter deleted", nil)
}

type categoryBody struct {
	Name string `json:"name"`
}

func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var body categoryBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	name, nameOK := validate.Name(body.Name)
	if !nameOK {
		return failMsg(c, fiber.StatusBadRequest, "category needs a name")
	}
	cat, err := h.Catalog.CreateCategory(name)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "category.create", map[string]any{"categoryId": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "category created", "data": cat})
}

// DeleteOrder removes an abandoned or mistaken order; reservations of an
// unpaid order are released in the process.
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Orders.Delete(id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.delete", map[string]any{"orderId": id})
	return ok(c, "order deleted", nil)
}

func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(adminOrderListLimit)))
	if limit <= 0 || limit > 200 {
		limit = adminOrderListLimit
	}
	orders, err := h.Orders.ListLatest(limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", orders)
}
