package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos_sales/internal/sales"
	"pos_sales/internal/session"
)

// sessionHandler drives the operator session over HTTP.
type sessionHandler struct {
	controller    *session.Controller
	feed          *session.Feed
	adminPassword string
	categories    []string
	logger        *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(controller *session.Controller, feed *session.Feed, adminPassword string, categories []string, logger *zap.Logger) *sessionHandler {
	return &sessionHandler{
		controller:    controller,
		feed:          feed,
		adminPassword: adminPassword,
		categories:    categories,
		logger:        logger,
	}
}

type transactionView struct {
	sales.SaleWithProduct
	DisplayTime string `json:"display_time"`
	DisplayName string `json:"display_name"`
}

type dashboardView struct {
	TotalRevenue       string            `json:"total_revenue"`
	TopSeller          *sales.TopSeller  `json:"top_seller"`
	RecentTransactions []transactionView `json:"recent_transactions"`
}

func newDashboardView(snap sales.DashboardSnapshot) dashboardView {
	recent := make([]transactionView, 0, len(snap.RecentTransactions))
	for _, s := range snap.RecentTransactions {
		recent = append(recent, transactionView{
			SaleWithProduct: s,
			DisplayTime:     s.DisplayTime(),
			DisplayName:     s.DisplayName(),
		})
	}
	return dashboardView{
		TotalRevenue:       snap.TotalRevenue.StringFixed(2),
		TopSeller:          snap.TopSeller,
		RecentTransactions: recent,
	}
}

// writeError maps controller and repository errors onto HTTP statuses.
func (h *sessionHandler) writeError(ctx *gin.Context, err error) {
	var (
		repoErr *sales.RepositoryError
		saleErr *sales.SaleError
	)
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": "invalid screen transition", "state": h.controller.State()})
	case errors.Is(err, session.ErrStaleResult):
		ctx.JSON(http.StatusConflict, gin.H{"error": "dashboard result is stale"})
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.As(err, &repoErr), errors.As(err, &saleErr):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *sessionHandler) handleGetScreen(ctx *gin.Context) {
	resp := gin.H{"state": h.controller.State()}
	if n, ok := h.feed.Latest(); ok {
		resp["notification"] = n
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) handleSelectCategory(ctx *gin.Context) {
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if err := h.controller.SelectCategory(req.Category); err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"state":    h.controller.State(),
		"products": h.controller.Products(),
	})
}

// handleOpenAdmin checks the shared admin password, opens the dashboard and
// loads it once. A failed load keeps the admin screen open.
func (h *sessionHandler) handleOpenAdmin(ctx *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		h.logger.Warn("incorrect admin password")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	if err := h.controller.OpenAdmin(); err != nil {
		h.writeError(ctx, err)
		return
	}

	resp := gin.H{"state": h.controller.State(), "dashboard": nil}
	snap, err := h.controller.LoadDashboard(ctx.Request.Context())
	if err != nil {
		h.logger.Error("error loading dashboard data", zap.Error(err))
		resp["dashboard_error"] = err.Error()
	} else {
		resp["dashboard"] = newDashboardView(snap)
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *sessionHandler) handleBack(ctx *gin.Context) {
	if err := h.controller.Back(); err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"state": h.controller.State()})
}

func (h *sessionHandler) handleSearchCategories(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"categories": sales.SearchCategories(h.categories, ctx.Query("q"))})
}

func (h *sessionHandler) handleGetProducts(ctx *gin.Context) {
	state := h.controller.State()
	ctx.JSON(http.StatusOK, gin.H{
		"category": state.Category,
		"products": h.controller.Products(),
	})
}

// handleRecordSale answers as soon as the sale is accepted; the outcome
// arrives later through the notification feed.
func (h *sessionHandler) handleRecordSale(ctx *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	product, err := sales.FindProduct(h.controller.Catalog(), req.ProductID)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	h.controller.Sell(ctx.Request.Context(), product)
	ctx.JSON(http.StatusAccepted, gin.H{
		"message": session.MsgSaleRecorded,
		"product": product,
	})
}

func (h *sessionHandler) handleDeleteSale(ctx *gin.Context) {
	saleID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || saleID <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return
	}

	if err := h.controller.DeleteSale(ctx.Request.Context(), saleID); err != nil {
		h.logger.Error("failed to delete sale", zap.Int64("sale_id", saleID), zap.Error(err))
		h.writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *sessionHandler) handleGetDashboard(ctx *gin.Context) {
	snap, err := h.controller.LoadDashboard(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newDashboardView(snap))
}

func (h *sessionHandler) handleGetNotifications(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"notifications": h.feed.All()})
}

func (h *sessionHandler) handleDismissNotification(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}
	if err := h.feed.Dismiss(id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	ctx.Status(http.StatusNoContent)
}
