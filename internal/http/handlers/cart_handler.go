package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

const sessionCartCookie = "session_cart_id"

type CartHandler struct {
	Cart *services.CartService
}

// ensureSessionCart gives every visitor a cart identity before login.
func ensureSessionCart(c *fiber.Ctx) string {
	sid := c.Cookies(sessionCartCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{Name: sessionCartCookie, Value: sid, Path: "/", HTTPOnly: true})
	}
	return sid
}

func cartOwner(c *fiber.Ctx) services.CartOwner {
	return services.CartOwner{
		UserID:        userIDFrom(c),
		SessionCartID: ensureSessionCart(c),
	}
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.Get(cartOwner(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", cart)
}

type addItemBody struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var body addItemBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if body.ProductID == "" {
		return failMsg(c, fiber.StatusBadRequest, "missing productId")
	}
	if body.Qty == 0 {
		body.Qty = 1
	}
	if !validate.Quantity(body.Qty) {
		return fail(c, services.ErrQuantity)
	}
	cart, err := h.Cart.AddItem(cartOwner(c), body.ProductID, body.Qty)
	if err != nil {
		return fail(c, err)
	}
	applog.Info(c, "cart.add", map[string]any{"productId": body.ProductID, "qty": body.Qty})
	return ok(c, "item added to cart", cart)
}

// Remove takes one unit off a line; the line disappears at zero.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID := c.Params("productId")
	cart, err := h.Cart.RemoveItem(cartOwner(c), productID)
	if err != nil {
		return fail(c, err)
	}
	applog.Info(c, "cart.remove", map[string]any{"productId": productID})
	return ok(c, "item removed from cart", cart)
}
