package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "tambour/internal/log"
	"tambour/internal/services"
	"tambour/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	Cart *services.CartService
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. Any session cart the
// visitor built up anonymously is merged into their own cart here.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return failMsg(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	email, emailOK := validate.Email(body.Email)
	if !emailOK || !validate.Password(body.Password) {
		return fail(c, services.ErrBadCreds)
	}

	u, token, err := h.Auth.Login(email, body.Password)
	if err != nil {
		applog.Security(c, "auth.login.failed", map[string]any{"email": email})
		return fail(c, err)
	}

	if sid := c.Cookies(sessionCartCookie); sid != "" {
		if err := h.Cart.MergeForLogin(u.ID, sid); err != nil {
			applog.Error(c, "cart.merge", err, map[string]any{"userId": u.ID})
		}
	}

	applog.Audit(c, "auth.login", map[string]any{"userId": u.ID})
	return ok(c, "logged in", fiber.Map{
		"token": token,
		"user":  fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role},
	})
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	u, err := h.Auth.CurrentUser(claims)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", fiber.Map{"id": u.ID, "email": u.Email, "name": u.Name, "role": u.Role})
}
