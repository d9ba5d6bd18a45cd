package handlers

import (
	"github.com/jmoiron/sqlx"

	"tambour/internal/config"
	"tambour/internal/repos"
	"tambour/internal/services"
)

type Deps struct {
	Auth *services.AuthService
	Cart *services.CartService

	AuthHandler       *AuthHandler
	ProductAPIHandler *ProductAPIHandler
	CatalogHandler    *CatalogHandler
	CartHandler       *CartHandler
	OrderHandler      *OrderHandler
	ArticleHandler    *ArticleHandler
	AdminHandler      *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	articleRepo := repos.NewArticleRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	ledgerSvc := services.NewLedgerService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartSvc, ledgerSvc, orderRepo)
	articleSvc := services.NewArticleService(articleRepo)

	return &Deps{
		Auth:              authSvc,
		Cart:              cartSvc,
		AuthHandler:       &AuthHandler{Auth: authSvc, Cart: cartSvc},
		ProductAPIHandler: &ProductAPIHandler{Ledger: ledgerSvc},
		CatalogHandler:    &CatalogHandler{Catalog: catalogSvc},
		CartHandler:       &CartHandler{Cart: cartSvc},
		OrderHandler:      &OrderHandler{Orders: orderSvc, Cfg: cfg},
		ArticleHandler:    &ArticleHandler{Articles: articleSvc},
		AdminHandler:      &AdminHandler{Catalog: catalogSvc, Orders: orderSvc},
	}
}
