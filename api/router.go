package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_sales/internal/metrics"
	"pos_sales/internal/session"
)

// Deps are the collaborators the operator API is built on.
type Deps struct {
	Controller    *session.Controller
	Feed          *session.Feed
	Metrics       *metrics.Registry
	AdminPassword string
	Categories    []string
	Logger        *zap.Logger
}

// InitRoutes registers the operator endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	h := NewSessionHandler(deps.Controller, deps.Feed, deps.AdminPassword, deps.Categories, logger)

	e.GET("/screen", h.handleGetScreen)
	e.POST("/screen/category", h.handleSelectCategory)
	e.POST("/screen/admin", h.handleOpenAdmin)
	e.POST("/screen/back", h.handleBack)

	e.GET("/categories", h.handleSearchCategories)
	e.GET("/products", h.handleGetProducts)

	e.POST("/sales", h.handleRecordSale)
	e.DELETE("/sales/:id", h.handleDeleteSale)

	e.GET("/dashboard", h.handleGetDashboard)

	e.GET("/notifications", h.handleGetNotifications)
	e.DELETE("/notifications/:id", h.handleDismissNotification)

	if deps.Metrics != nil {
		e.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
