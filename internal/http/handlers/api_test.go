package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"tambour/internal/config"
	"tambour/internal/domain"
	"tambour/internal/http/handlers"
	"tambour/internal/repos"
	"tambour/internal/services"
)

const (
	drumCode = "TAM-0001"
	drumID   = "c1000000-0000-4000-8000-000000000001"
	adminID  = "e1000000-0000-4000-8000-000000000001"
	password = "Passw0rd!"
)

func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		JWTSecret:            "test-secret",
		PaymentMethods:       []string{"Stripe", "Transfer"},
		DefaultPaymentMethod: "Stripe",
	}
	deps := handlers.NewDeps(db, cfg)
	app := fiber.New()
	handlers.Routes(app, deps)
	return app, deps
}

func token(t *testing.T, deps *handlers.Deps, email string) string {
	t.Helper()
	_, tok, err := deps.Auth.Login(email, password)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func jsonReq(method, target, bearer string, body any) *http.Request {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestProductAPI_RequiresBearerToken(t *testing.T) {
	app, deps := newTestApp(t)

	resp, err := app.Test(jsonReq("GET", "/api/v1/products/"+drumCode, "", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("GET", "/api/v1/products/"+drumCode, "not-a-jwt", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 with garbage token, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("GET", "/api/v1/products/"+drumCode, token(t, deps, "admin@tambour.test"), nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200 with token, got %d", resp.StatusCode)
	}
}

func TestProductAPI_DualIdentifierLookup(t *testing.T) {
	app, deps := newTestApp(t)
	tok := token(t, deps, "admin@tambour.test")

	byCode, err := app.Test(jsonReq("GET", "/api/v1/products/"+drumCode, tok, nil))
	if err != nil {
		t.Fatal(err)
	}
	byID, err := app.Test(jsonReq("GET", "/api/v1/products/"+drumID, tok, nil))
	if err != nil {
		t.Fatal(err)
	}
	if byCode.StatusCode != 200 || byID.StatusCode != 200 {
		t.Fatalf("want 200/200, got %d/%d", byCode.StatusCode, byID.StatusCode)
	}
	if decode(t, byCode)["id"] != decode(t, byID)["id"] {
		t.Fatal("code and id lookups returned different products")
	}

	missing, err := app.Test(jsonReq("GET", "/api/v1/products/NOPE-9999", tok, nil))
	if err != nil {
		t.Fatal(err)
	}
	if missing.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404, got %d", missing.StatusCode)
	}
	if msg, okMsg := decode(t, missing)["error"]; !okMsg || msg == "" {
		t.Fatal("missing error message in 404 body")
	}
}

func TestProductAPI_BlockDeclareSaleRelease(t *testing.T) {
	app, deps := newTestApp(t)
	tok := token(t, deps, "admin@tambour.test")

	resp, err := app.Test(jsonReq("PATCH", "/api/v1/products/"+drumCode, tok,
		map[string]any{"action": "block", "quantity": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("block: want 200, got %d", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["stock"].(float64) != 2 || body["blockedQuantity"].(float64) != 3 {
		t.Fatalf("block: bad counters %v / %v", body["stock"], body["blockedQuantity"])
	}

	resp, err = app.Test(jsonReq("POST", "/api/v1/products/"+drumCode+"/declare-sale", tok,
		map[string]any{"quantity": 2, "useReservation": true}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("declare-sale: want 200, got %d", resp.StatusCode)
	}
	body = decode(t, resp)
	if body["stock"].(float64) != 2 || body["blockedQuantity"].(float64) != 1 {
		t.Fatalf("declare-sale: bad counters %v / %v", body["stock"], body["blockedQuantity"])
	}

	resp, err = app.Test(jsonReq("POST", "/api/v1/products/"+drumCode+"/release", tok,
		map[string]any{"quantity": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("release: want 200, got %d", resp.StatusCode)
	}
	body = decode(t, resp)
	if body["stock"].(float64) != 3 || body["blockedQuantity"].(float64) != 0 {
		t.Fatalf("release: bad counters %v / %v", body["stock"], body["blockedQuantity"])
	}

	// nothing blocked anymore
	resp, err = app.Test(jsonReq("POST", "/api/v1/products/"+drumCode+"/release", tok,
		map[string]any{"quantity": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("over-release: want 400, got %d", resp.StatusCode)
	}

	resp, err = app.Test(jsonReq("PATCH", "/api/v1/products/"+drumCode, tok,
		map[string]any{"action": "block", "quantity": 0}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("zero quantity: want 400, got %d", resp.StatusCode)
	}
}

func TestCartFlow_AnonymousCookie(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq("POST", "/api/v1/cart/items", "",
		map[string]any{"productId": drumID, "qty": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("add: want 200, got %d", resp.StatusCode)
	}

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session_cart_id" {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session_cart_id cookie set")
	}

	req := jsonReq("GET", "/api/v1/cart/", "", nil)
	req.AddCookie(sessionCookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body := decode(t, resp)
	if body["success"] != true {
		t.Fatalf("view: bad envelope %v", body)
	}
	data := body["data"].(map[string]any)
	items := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("want the added line back, got %v", items)
	}
}

func TestCatalog_PublicEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	for _, target := range []string{
		"/api/v1/catalog/latest",
		"/api/v1/catalog/featured",
		"/api/v1/catalog/categories",
		"/api/v1/catalog/search?query=tambour",
		"/api/v1/catalog/products/tambour-chamanique-40",
	} {
		resp, err := app.Test(jsonReq("GET", target, "", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("%s: want 200, got %d", target, resp.StatusCode)
		}
		if body := decode(t, resp); body["success"] != true {
			t.Fatalf("%s: bad envelope %v", target, body)
		}
	}

	resp, err := app.Test(jsonReq("GET", "/api/v1/catalog/products/no-such-slug", "", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestAdmin_RoleClaimEnforced(t *testing.T) {
	app, deps := newTestApp(t)

	userTok := token(t, deps, "claire@tambour.test")
	resp, err := app.Test(jsonReq("GET", "/api/v1/admin/orders", userTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("want 403 for USER role, got %d", resp.StatusCode)
	}

	adminTok := token(t, deps, "admin@tambour.test")
	resp, err = app.Test(jsonReq("GET", "/api/v1/admin/orders", adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200 for ADMIN role, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

func TestOrders_PayRequiresOwnership(t *testing.T) {
	app, deps := newTestApp(t)

	// an order that belongs to the admin account
	adminOwner := services.CartOwner{UserID: adminID, SessionCartID: "sess-admin-pay"}
	if _, err := deps.Cart.AddItem(adminOwner, drumID, 1); err != nil {
		t.Fatal(err)
	}
	order, err := deps.OrderHandler.Orders.Place(adminID, adminOwner, domain.ShippingAddress{
		FullName:      "Armelle Toussaint",
		StreetAddress: "3 quai des Celestins",
		City:          "Lyon",
		PostalCode:    "69002",
		Country:       "France",
	}, "Stripe")
	if err != nil {
		t.Fatal(err)
	}

	payment := map[string]any{"id": "pi_123", "status": "succeeded", "pricePaid": order.TotalPrice.String()}

	// another customer cannot settle it
	resp, err := app.Test(jsonReq("POST", "/api/v1/orders/"+order.ID+"/pay",
		token(t, deps, "claire@tambour.test"), payment))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404 paying someone else's order, got %d", resp.StatusCode)
	}
	got, _, err := deps.OrderHandler.Orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsPaid {
		t.Fatal("order must stay unpaid after a foreign pay attempt")
	}

	// the owner can
	resp, err = app.Test(jsonReq("POST", "/api/v1/orders/"+order.ID+"/pay",
		token(t, deps, "admin@tambour.test"), payment))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("owner pay should succeed, got %d", resp.StatusCode)
	}
	got, _, err = deps.OrderHandler.Orders.Get(order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsPaid {
		t.Fatal("order should be paid by its owner")
	}
}
