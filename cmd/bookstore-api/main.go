package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bookhaven/bookstore-api/docs"
	"github.com/bookhaven/bookstore-api/internal/book"
	"github.com/bookhaven/bookstore-api/internal/cart"
	"github.com/bookhaven/bookstore-api/internal/config"
	"github.com/bookhaven/bookstore-api/internal/db"
	"github.com/bookhaven/bookstore-api/internal/httpx"
	"github.com/bookhaven/bookstore-api/internal/order"
	"github.com/bookhaven/bookstore-api/internal/recommend"
	"github.com/bookhaven/bookstore-api/internal/report"
	"github.com/bookhaven/bookstore-api/internal/restock"
	"github.com/bookhaven/bookstore-api/internal/user"
)

// @title Bookstore API
// @version 1.0
// @description Online bookstore backend: catalog, cart, checkout, restocking and reports.
// @BasePath /api
func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	if err := db.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	books := book.NewPGRepo(pool)
	carts := cart.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	checkout := order.NewService(order.NewPGStore(pool))
	users := user.NewPGRepo(pool)
	restocks := restock.NewPGRepo(pool)
	reports := report.NewPGRepo(pool)
	recs := recommend.NewPGRepo(pool)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.CORS(cfg.CORSOrigin))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	auth := httpx.Auth(cfg.JWTSecret)
	admin := httpx.RequireAdmin()
	api := r.Group("/api")

	api.POST("/auth/signup", signupHandler(users))
	api.POST("/auth/login", loginHandler(users, cfg.JWTSecret))
	api.POST("/auth/logout", auth, logoutHandler(carts))

	api.GET("/users/me", auth, getMeHandler(users))
	api.GET("/users/:id", auth, getUserHandler(users))
	api.PUT("/users/:id", auth, updateUserHandler(users))

	api.GET("/books", searchBooksHandler(books))
	api.GET("/books/search", searchBooksHandler(books))
	api.GET("/books/authors", listAuthorsHandler(books))
	api.POST("/books/add", auth, admin, addBookHandler(books))
	api.PUT("/books/update/:isbn", auth, admin, modifyBookHandler(books))
	api.DELETE("/books/delete/:isbn", auth, admin, deleteBookHandler(books))

	api.POST("/cart", auth, addToCartHandler(carts))
	api.GET("/cart", auth, getCartHandler(carts))
	api.DELETE("/cart/:cartId", auth, removeFromCartHandler(carts))

	api.POST("/orders/checkout", auth, checkoutHandler(checkout))
	api.GET("/orders/history", auth, orderHistoryHandler(orders))
	api.GET("/orders/admin/all", auth, admin, listAllOrdersHandler(orders))
	api.PUT("/orders/admin/status/:id", auth, admin, updateOrderStatusHandler(orders))
	api.GET("/orders/admin/low-stock", auth, admin, lowStockHandler(books))
	api.GET("/orders/admin/publisher-orders", auth, admin, listPublisherOrdersHandler(restocks))
	api.POST("/orders/admin/publisher-order", auth, admin, placePublisherOrderHandler(restocks))
	api.PUT("/orders/admin/publisher-order/:id/confirm", auth, admin, confirmPublisherOrderHandler(restocks))

	api.GET("/reports/sales/last-month", auth, admin, salesLastMonthHandler(reports))
	api.GET("/reports/sales/by-date", auth, admin, salesByDateHandler(reports))
	api.GET("/reports/top-customers", auth, admin, topCustomersHandler(reports))
	api.GET("/reports/top-books", auth, admin, topBooksHandler(reports))
	api.GET("/reports/replenishment/:isbn", auth, admin, replenishmentHandler(reports))

	api.GET("/recommendations", auth, recommendationsHandler(recs))

	log.Printf("bookstore-api listening on %s", cfg.Addr)
	log.Fatal(r.Run(cfg.Addr))
}
