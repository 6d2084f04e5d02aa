package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tableserve/api/internal/auth"
	"github.com/tableserve/api/internal/cart"
	"github.com/tableserve/api/internal/config"
	"github.com/tableserve/api/internal/core"
	"github.com/tableserve/api/internal/db"
	"github.com/tableserve/api/internal/httpx"
	"github.com/tableserve/api/internal/hub"
	"github.com/tableserve/api/internal/logger"
	"github.com/tableserve/api/internal/menu"
	"github.com/tableserve/api/internal/order"
	"github.com/tableserve/api/internal/payment"
	"github.com/tableserve/api/internal/reaper"
	"github.com/tableserve/api/internal/session"
	"github.com/tableserve/api/internal/staff"
	"github.com/tableserve/api/internal/token"
	"github.com/tableserve/api/internal/venue"
)

func main() {
	cfg := config.Load()
	log := logger.New("api-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db.connect", err, nil)
		return
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("db.schema", err, nil)
		return
	}

	svc := &core.Service{
		Cfg:      cfg,
		Log:      log,
		Venues:   venue.NewPGRepo(pool),
		Sessions: session.NewPGRepo(pool),
		Carts:    cart.NewPGRepo(pool),
		Orders:   order.NewPGRepo(pool),
		Payments: payment.NewPGRepo(pool, payment.MockProvider{}),
		Staff:    staff.NewPGRepo(pool),
		Menu:     menu.NewDemoCatalog(),
		Tokens:   token.NewStore(),
		StaffTok: auth.NewTokens(cfg.StaffTokenSecret, cfg.StaffTokenTTL),
		Hub:      hub.New(),
	}
	if err := svc.SeedDemo(ctx); err != nil {
		log.Error("seed", err, nil)
		return
	}

	go reaper.New(svc).Run(ctx)

	srv := &http.Server{Addr: cfg.APIAddr, Handler: newRouter(svc)}
	go func() {
		log.Info("http.listen", map[string]any{"addr": cfg.APIAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http.serve", err, nil)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func newRouter(svc *core.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(svc.Log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api/v1")

	api.GET("/venues/:slug/menu", getMenuHandler(svc))
	api.POST("/sessions", joinHandler(svc))

	guest := api.Group("/sessions/:sessionId")
	guest.GET("/state", stateHandler(svc))
	guest.GET("/events", sessionEventsHandler(svc))
	guest.POST("/cart/items", addCartItemHandler(svc))
	guest.PATCH("/cart/items/:itemId", setCartQtyHandler(svc))
	guest.DELETE("/cart/items/:itemId", removeCartItemHandler(svc))
	guest.POST("/orders", submitOrderHandler(svc))
	guest.POST("/payments", createPaymentHandler(svc))
	guest.GET("/payments/:paymentId", getPaymentHandler(svc))
	guest.POST("/assistance", assistanceHandler(svc))
	guest.POST("/ping", pingHandler(svc))

	api.POST("/auth/login", loginHandler(svc))

	staffG := api.Group("/staff", requireStaff(svc, auth.RoleAdmin, auth.RoleKitchen, auth.RoleWaiter))
	staffG.GET("/orders", listOrdersHandler(svc))
	staffG.PATCH("/orders/:orderId/status", setOrderStatusHandler(svc))

	api.GET("/staff/kitchen/events", requireStaff(svc, auth.RoleAdmin, auth.RoleKitchen), kitchenEventsHandler(svc))
	api.GET("/staff/waiters/events", requireStaff(svc, auth.RoleAdmin, auth.RoleWaiter), waitersEventsHandler(svc))

	admin := api.Group("/admin", requireStaff(svc, auth.RoleAdmin))
	admin.POST("/sessions/:sessionId/close", closeSessionHandler(svc))
	admin.POST("/venues/:slug/menu/refresh", refreshMenuHandler(svc))

	return r
}
