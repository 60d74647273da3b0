package handlers

import (
	"bubblebliss/internal/config"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/repos"
	"bubblebliss/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	DB      *sqlx.DB
	Metrics *metrics.Metrics
	Auth    *services.AuthService

	// Reconciler is started by the serve command; handlers do not use it.
	Reconciler *services.Reconciler

	CatalogHandler   *CatalogHandler
	OrderHandler     *OrderHandler
	AuthHandler      *AuthHandler
	AdminHandler     *AdminHandler
	InventoryHandler *InventoryHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, gw services.Gateway, m *metrics.Metrics) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	topRepo := repos.NewToppingRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	cbRepo := repos.NewCallbackRepo(db)
	adminRepo := repos.NewAdminRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prodRepo, topRepo)
	invSvc := services.NewInventoryService(invRepo)
	pricer := services.NewPricer(prodRepo, topRepo)
	orderSvc := services.NewOrderService(db, cfg, pricer, gw, m)
	cbSvc := services.NewCallbackService(orderRepo, cbRepo, gw, m)
	authSvc := services.NewAuthService(adminRepo, cfg.JWTSecret, cfg.AccessTokenTTL)
	adminSvc := services.NewAdminService(orderRepo)

	return &Deps{
		DB:               db,
		Metrics:          m,
		Auth:             authSvc,
		Reconciler:       services.NewReconciler(db, cbSvc, gw, cfg.ReconcileGrace, cfg.OrderTxTimeout, m),
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc, Callbacks: cbSvc},
		AuthHandler:      &AuthHandler{Auth: authSvc},
		AdminHandler:     &AdminHandler{Admin: adminSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
	}
}
