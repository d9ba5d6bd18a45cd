package services_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tambour/internal/pricing"
	"tambour/internal/repos"
	"tambour/internal/services"
)

const (
	seedUserID  = "e1000000-0000-4000-8000-000000000002" // Claire, USER
	seedAdminID = "e1000000-0000-4000-8000-000000000001"
)

func cartSvc(t *testing.T) (*services.CartService, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	return services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db)), db
}

func TestCart_AddItemSnapshotsPriceAndPrices(t *testing.T) {
	svc, _ := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-1"}

	cart, err := svc.AddItem(owner, drumID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 1 {
		t.Fatalf("bad cart after add: %+v", cart.Items)
	}
	if !cart.Items[0].Price.Equal(decimal.RequireFromString("249.00")) {
		t.Fatalf("line must snapshot the product price, got %s", cart.Items[0].Price)
	}
	// 249.00 > 150, free shipping; tax = 249/6 = 41.50
	if !cart.ItemsPrice.Equal(decimal.RequireFromString("249.00")) ||
		!cart.TaxPrice.Equal(decimal.RequireFromString("41.50")) ||
		!cart.ShippingPrice.Equal(decimal.Zero) ||
		!cart.TotalPrice.Equal(decimal.RequireFromString("249.00")) {
		t.Fatalf("bad derived prices: items=%s tax=%s ship=%s total=%s",
			cart.ItemsPrice, cart.TaxPrice, cart.ShippingPrice, cart.TotalPrice)
	}
}

func TestCart_AddMergesExistingLine(t *testing.T) {
	svc, _ := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-2"}

	if _, err := svc.AddItem(owner, malletID, 2); err != nil {
		t.Fatal(err)
	}
	cart, err := svc.AddItem(owner, malletID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 3 {
		t.Fatalf("want one line qty 3, got %+v", cart.Items)
	}
}

func TestCart_AddRejectsBeyondStock(t *testing.T) {
	svc, _ := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-3"}

	// bigDrum has stock 2
	if _, err := svc.AddItem(owner, bigDrum, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(owner, bigDrum, 1); !errors.Is(err, services.ErrOutOfStock) {
		t.Fatalf("want ErrOutOfStock, got %v", err)
	}
	if _, err := svc.AddItem(owner, "no-such-product-id", 1); !errors.Is(err, services.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestCart_RemoveDecrementsThenDropsLine(t *testing.T) {
	svc, _ := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-4"}

	if _, err := svc.AddItem(owner, malletID, 2); err != nil {
		t.Fatal(err)
	}
	cart, err := svc.RemoveItem(owner, malletID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Qty != 1 {
		t.Fatalf("want qty 1 after remove, got %+v", cart.Items)
	}
	cart, err = svc.RemoveItem(owner, malletID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("line should disappear at zero, got %+v", cart.Items)
	}

	if _, err := svc.RemoveItem(owner, drumID); !errors.Is(err, services.ErrItemNotFound) {
		t.Fatalf("want ErrItemNotFound, got %v", err)
	}
	if _, err := svc.RemoveItem(services.CartOwner{SessionCartID: "never-seen"}, drumID); !errors.Is(err, services.ErrCartNotFound) {
		t.Fatalf("want ErrCartNotFound, got %v", err)
	}
}

func TestCart_GetWithoutCartIsEmpty(t *testing.T) {
	svc, _ := cartSvc(t)

	cart, err := svc.Get(services.CartOwner{SessionCartID: "fresh"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 0 || cart.ID != "" {
		t.Fatalf("want empty unsaved cart, got %+v", cart)
	}
}

func TestCart_MergeForLogin_AdoptsSessionCart(t *testing.T) {
	svc, db := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-adopt"}

	if _, err := svc.AddItem(owner, drumID, 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.MergeForLogin(seedUserID, "sess-adopt"); err != nil {
		t.Fatal(err)
	}

	cartRepo := repos.NewCartRepo(db)
	c, err := cartRepo.ByUser(seedUserID)
	if err != nil {
		t.Fatal(err)
	}
	if c.SessionCartID != "sess-adopt" {
		t.Fatalf("session cart should become the user's, got %+v", c)
	}
}

func TestCart_MergeForLogin_FoldsQuantities(t *testing.T) {
	svc, db := cartSvc(t)

	// user already has a cart with 1 drum and 1 mallet
	userOwner := services.CartOwner{UserID: seedUserID, SessionCartID: "sess-user"}
	if _, err := svc.AddItem(userOwner, drumID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(userOwner, malletID, 1); err != nil {
		t.Fatal(err)
	}

	// anonymous browsing added another drum
	if _, err := svc.AddItem(services.CartOwner{SessionCartID: "sess-anon"}, drumID, 1); err != nil {
		t.Fatal(err)
	}

	if err := svc.MergeForLogin(seedUserID, "sess-anon"); err != nil {
		t.Fatal(err)
	}

	cart, err := svc.Get(services.CartOwner{UserID: seedUserID})
	if err != nil {
		t.Fatal(err)
	}
	byProduct := map[string]int{}
	for _, it := range cart.Items {
		byProduct[it.ProductID] = it.Qty
	}
	if byProduct[drumID] != 2 || byProduct[malletID] != 1 {
		t.Fatalf("merge should fold quantities, got %+v", byProduct)
	}

	// the anonymous row is gone
	cartRepo := repos.NewCartRepo(db)
	if _, err := cartRepo.BySession("sess-anon"); !repos.IsNoRows(err) {
		t.Fatalf("session cart row should be deleted, got %v", err)
	}
}

func TestCart_ConcurrentAddsKeepAllLines(t *testing.T) {
	svc, _ := cartSvc(t)

	// Two requests for the same cart arriving together; neither add may
	// overwrite the other's line.
	for round := 0; round < 20; round++ {
		owner := services.CartOwner{SessionCartID: fmt.Sprintf("sess-race-%d", round)}
		if _, err := svc.AddItem(owner, malletID, 1); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, pid := range []string{drumID, bigDrum} {
			wg.Add(1)
			go func(i int, pid string) {
				defer wg.Done()
				_, errs[i] = svc.AddItem(owner, pid, 1)
			}(i, pid)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				t.Fatal(err)
			}
		}

		cart, err := svc.Get(owner)
		if err != nil {
			t.Fatal(err)
		}
		if len(cart.Items) != 3 {
			t.Fatalf("round %d: lost a cart line, want 3 got %d: %+v", round, len(cart.Items), cart.Items)
		}
	}
}

func TestCart_StaleWriteDoesNotClobber(t *testing.T) {
	svc, db := cartSvc(t)
	owner := services.CartOwner{SessionCartID: "sess-stale"}

	if _, err := svc.AddItem(owner, drumID, 1); err != nil {
		t.Fatal(err)
	}
	cartRepo := repos.NewCartRepo(db)
	row, err := cartRepo.BySession("sess-stale")
	if err != nil {
		t.Fatal(err)
	}

	// a writer holding an outdated copy of the item array must miss
	applied, err := cartRepo.SetItems(row.ID, "[]", "[]", pricing.CalcTotals(nil))
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Fatal("stale write must not land")
	}

	// the current copy still goes through
	applied, err = cartRepo.SetItems(row.ID, row.ItemsJSON, "[]", pricing.CalcTotals(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("up-to-date write should land")
	}
}
