package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

// ProductAPIHandler is the machine-facing stock ledger surface used by
// the POS and the warehouse scanner. It speaks plain product JSON, with
// errors as {"error": message}, not the storefront envelope.
type ProductAPIHandler struct {
	Ledger *services.LedgerService
}

func apiError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

// Get resolves a product by primary key or business code.
func (h *ProductAPIHandler) Get(c *fiber.Ctx) error {
	p, err := h.Ledger.GetByIdentifier(c.Params("identifier"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(p)
}

type patchBody struct {
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
}

// Patch applies a reservation action: block takes units from available
// stock into the blocked pool, release puts them back.
func (h *ProductAPIHandler) Patch(c *fiber.Ctx) error {
	var body patchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if !validate.Quantity(body.Quantity) {
		return apiError(c, services.ErrQuantity)
	}

	p, err := h.Ledger.GetByIdentifier(c.Params("identifier"))
	if err != nil {
		return apiError(c, err)
	}

	switch body.Action {
	case "block":
		p, err = h.Ledger.BlockUnits(p.ID, body.Quantity)
	case "release":
		p, err = h.Ledger.ReleaseUnits(p.ID, body.Quantity)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be block or release"})
	}
	if err != nil {
		return apiError(c, err)
	}
	applog.Audit(c, "ledger."+body.Action, map[string]any{
		"productId": p.ID, "quantity": body.Quantity,
	})
	return c.JSON(p)
}

type declareSaleBody struct {
	Quantity       int  `json:"quantity"`
	UseReservation bool `json:"useReservation"`
}

// DeclareSale records sold units, either consuming a prior reservation
// or taking directly from available stock.
func (h *ProductAPIHandler) DeclareSale(c *fiber.Ctx) error {
	var body declareSaleBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if !validate.Quantity(body.Quantity) {
		return apiError(c, services.ErrQuantity)
	}

	p, err := h.Ledger.GetByIdentifier(c.Params("identifier"))
	if err != nil {
		return apiError(c, err)
	}
	p, err = h.Ledger.DeclareSale(p.ID, body.Quantity, body.UseReservation)
	if err != nil {
		return apiError(c, err)
	}
	applog.Audit(c, "ledger.declare_sale", map[string]any{
		"productId": p.ID, "quantity": body.Quantity, "useReservation": body.UseReservation,
	})
	return c.JSON(p)
}

type releaseBody struct {
	Quantity int `json:"quantity"`
}

// Release returns blocked units to available stock.
func (h *ProductAPIHandler) Release(c *fiber.Ctx) error {
	var body releaseBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if !validate.Quantity(body.Quantity) {
		return apiError(c, services.ErrQuantity)
	}

	p, err := h.Ledger.GetByIdentifier(c.Params("identifier"))
	if err != nil {
		return apiError(c, err)
	}
	p, err = h.Ledger.ReleaseUnits(p.ID, body.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrNoBlockedUnits) || errors.Is(err, services.ErrInvalidRelease) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return apiError(c, err)
	}
	applog.Audit(c, "ledger.release", map[string]any{
		"productId": p.ID, "quantity": body.Quantity,
	})
	return c.JSON(p)
}
