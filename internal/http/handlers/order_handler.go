package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/config"
	"tambour/internal/domain"
	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
	Cfg    config.Config
}

type placeOrderBody struct {
	Address       domain.ShippingAddress `json:"address"`
	PaymentMethod string                 `json:"paymentMethod"`
}

// Place turns the caller's cart into an order. Signed-in users only;
// the cart may still be the anonymous session cart, it is adopted here.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var body placeOrderBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if !services.ValidAddress(body.Address) {
		return failMsg(c, fiber.StatusBadRequest, "incomplete shipping address")
	}
	method := body.PaymentMethod
	if method == "" {
		method = h.Cfg.DefaultPaymentMethod
	}
	method, valid := validate.PaymentMethod(method, h.Cfg.PaymentMethods)
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "unsupported payment method")
	}

	userID := userIDFrom(c)
	order, err := h.Orders.Place(userID, cartOwner(c), body.Address, method)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"orderId": order.ID, "userId": userID, "total": order.TotalPrice.String(),
	})
	return ok(c, "order placed", order)
}

type orderView struct {
	domain.Order
	Items           []domain.OrderItem     `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, items, err := h.Orders.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	claims := claimsFrom(c)
	if claims.Role != "ADMIN" && order.UserID != claims.Subject {
		applog.Security(c, "access.denied.order", map[string]any{"orderId": order.ID})
		return fail(c, services.ErrOrderNotFound)
	}
	return ok(c, "", orderView{
		Order:           order,
		Items:           items,
		ShippingAddress: decodeAddress(order.AddressJSON),
	})
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.ListByUser(userIDFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", orders)
}

// Pay records a payment result against an order; a second call for the
// same order fails without touching the ledger again.
func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	var result domain.PaymentResult
	if err := c.BodyParser(&result); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	order, _, err := h.Orders.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	claims := claimsFrom(c)
	if claims.Role != "ADMIN" && order.UserID != claims.Subject {
		applog.Security(c, "access.denied.order", map[string]any{"orderId": order.ID})
		return fail(c, services.ErrOrderNotFound)
	}
	order, err = h.Orders.ConfirmPayment(order.ID, result)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.paid", map[string]any{"orderId": order.ID, "paymentId": result.ID})
	return ok(c, "payment recorded", order)
}

func (h *OrderHandler) Deliver(c *fiber.Ctx) error {
	order, err := h.Orders.MarkDelivered(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.delivered", map[string]any{"orderId": order.ID})
	return ok(c, "order marked delivered", order)
}

func decodeAddress(addrJSON string) domain.ShippingAddress {
	var addr domain.ShippingAddress
	if addrJSON != "" {
		_ = json.Unmarshal([]byte(addrJSON), &addr)
	}
	return addr
}
