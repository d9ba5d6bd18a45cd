package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/services"
)

// Storefront actions answer with a uniform envelope so client code can
// branch on success without inspecting status codes.
func ok(c *fiber.Ctx, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func failMsg(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

var notFoundErrs = []error{
	services.ErrNotFound,
	services.ErrProductNotFound,
	services.ErrCartNotFound,
	services.ErrOrderNotFound,
	services.ErrArticleNotFound,
	services.ErrSectionNotFound,
}

var badRequestErrs = []error{
	services.ErrQuantity,
	services.ErrInsufficientStock,
	services.ErrNoBlockedUnits,
	services.ErrInvalidRelease,
	services.ErrInsufficientReservation,
	services.ErrOutOfStock,
	services.ErrItemNotFound,
	services.ErrCartEmpty,
	services.ErrAlreadyPaid,
	services.ErrOrderNotPaid,
	services.ErrAlreadyDelivered,
	services.ErrSpecExists,
	services.ErrProductInUse,
}

func statusFor(err error) int {
	for _, e := range notFoundErrs {
		if errors.Is(err, e) {
			return fiber.StatusNotFound
		}
	}
	for _, e := range badRequestErrs {
		if errors.Is(err, e) {
			return fiber.StatusBadRequest
		}
	}
	if errors.Is(err, services.ErrBadCreds) || errors.Is(err, services.ErrBadToken) {
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}
