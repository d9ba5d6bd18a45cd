package services_test

import (
	"errors"
	"testing"

	"tambour/internal/domain"
	"tambour/internal/repos"
	"tambour/internal/services"
)

func catalog(t *testing.T) *services.CatalogService {
	t.Helper()
	db := memdb(t)
	return services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewProductRepo(db))
}

func TestCatalog_GetBySlugCarriesSpecification(t *testing.T) {
	svc := catalog(t)

	drum, err := svc.GetBySlug("tambour-chamanique-40")
	if err != nil {
		t.Fatal(err)
	}
	if drum.Drum == nil || drum.Other != nil {
		t.Fatalf("drum product should carry a drum spec only: %+v", drum)
	}

	mallet, err := svc.GetBySlug("mailloche-feutre")
	if err != nil {
		t.Fatal(err)
	}
	if mallet.Other == nil || mallet.Drum != nil {
		t.Fatalf("accessory should carry an other spec only: %+v", mallet)
	}

	if _, err := svc.GetBySlug("no-such-slug"); !errors.Is(err, services.ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestCatalog_SearchFilters(t *testing.T) {
	svc := catalog(t)

	all, err := svc.Search(repos.SearchFilter{}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Products) != 3 {
		t.Fatalf("want all 3 seeded products, got %d", len(all.Products))
	}

	bison, err := svc.Search(repos.SearchFilter{SkinType: "Bison"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(bison.Products) != 1 || bison.Products[0].Slug != "tambour-de-cercle-50" {
		t.Fatalf("bad skin-type filter result: %+v", bison.Products)
	}

	cheap, err := svc.Search(repos.SearchFilter{Sort: "lowest"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cheap.Products[0].Slug != "mailloche-feutre" {
		t.Fatalf("lowest-price sort should lead with the mallet, got %s", cheap.Products[0].Slug)
	}

	none, err := svc.Search(repos.SearchFilter{Query: "zzz"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(none.Products) != 0 || none.TotalPages != 0 {
		t.Fatalf("want empty result, got %+v", none)
	}
}

func TestCatalog_AttachSecondSpecificationRejected(t *testing.T) {
	svc := catalog(t)

	// seeded drum already has its spec
	err := svc.AttachOtherSpec(domain.Other{ProductID: drumID, Color: "rouge"})
	if !errors.Is(err, services.ErrSpecExists) {
		t.Fatalf("want ErrSpecExists, got %v", err)
	}
	err = svc.AttachDrumSpec(domain.Drum{
		ProductID:  drumID,
		SkinTypeID: "a1000000-0000-4000-8000-000000000001",
		DiameterID: "b1000000-0000-4000-8000-000000000001",
	})
	if !errors.Is(err, services.ErrSpecExists) {
		t.Fatalf("want ErrSpecExists for a second drum spec, got %v", err)
	}
}

func TestCatalog_DeleteProductWithOrderHistory(t *testing.T) {
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), prodRepo)
	carts := services.NewCartService(repos.NewCartRepo(db), prodRepo)
	orders := services.NewOrderService(carts, services.NewLedgerService(prodRepo), repos.NewOrderRepo(db))

	owner := services.CartOwner{UserID: seedUserID, SessionCartID: "sess-del-prod"}
	if _, err := carts.AddItem(owner, drumID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := orders.Place(seedUserID, owner, testAddr(), "Stripe"); err != nil {
		t.Fatal(err)
	}

	// order items reference the product row, removal must fail cleanly
	if err := catalog.DeleteProduct(drumID); !errors.Is(err, services.ErrProductInUse) {
		t.Fatalf("want ErrProductInUse, got %v", err)
	}
	if _, err := prodRepo.Get(drumID); err != nil {
		t.Fatalf("product must survive the rejected delete: %v", err)
	}
}
