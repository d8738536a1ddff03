package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storebot/internal/catalog"
	"storebot/internal/handler/api"
	"storebot/internal/middleware"
	"storebot/internal/shop"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	engine *catalog.Engine,
	svc *shop.Service,
	logger *zap.Logger,
	apiKey string,
	updateDeduper middleware.UpdateDeduper,
	webhookHandler http.Handler,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	catalogHandler := api.NewCatalogHandler(engine, svc, logger)
	orderHandler := api.NewOrderHandler(svc, logger)

	// API group with auth + logging middleware
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))
	apiGroup.Use(middleware.APILogger(logger))

	apiGroup.POST("/catalog", catalogHandler.Handle)
	apiGroup.POST("/orders", orderHandler.Handle)

	// Telegram webhook (protected by IP check + deduplication)
	if webhookHandler != nil {
		botWebhookGroup := e.Group("/bot")
		botWebhookGroup.Use(middleware.TelegramIPCheck())
		botWebhookGroup.Use(middleware.TelegramUpdateDedup(updateDeduper, logger))
		botWebhookGroup.POST("/webhook", echo.WrapHandler(webhookHandler))
	} else {
		logger.Info("Telegram webhook routes disabled (bot update mode is polling)")
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
