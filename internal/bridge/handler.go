package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Shapes the handler can answer in.
const (
	ShapeArray = "array"
	ShapeData  = "data"
	ShapeRows  = "rows"
)

type queryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

// Handler serves POST /api/query.
type Handler struct {
	exec   *Executor
	shape  string
	logger *zap.Logger
}

// NewHandler creates a query handler answering in the given shape; unknown shapes fall back to rows.
func NewHandler(exec *Executor, shape string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	switch shape {
	case ShapeArray, ShapeData, ShapeRows:
	default:
		shape = ShapeRows
	}
	return &Handler{exec: exec, shape: shape, logger: logger}
}

// InitRoutes registers the query endpoint and a health check.
func (h *Handler) InitRoutes(e *gin.Engine) {
	e.POST("/api/query", h.handleQuery)
	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

func (h *Handler) handleQuery(ctx *gin.Context) {
	var req queryRequest
	body, err := ctx.GetRawData()
	if err == nil {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		err = dec.Decode(&req)
	}
	if err != nil {
		h.logger.Warn("failed to decode query request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	rows, err := h.exec.Execute(ctx.Request.Context(), req.Query, req.Params)
	if err != nil {
		h.logger.Error("query failed", zap.String("query", req.Query), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrUnsupportedParam) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.logger.Debug("query served",
		zap.String("request_id", ctx.GetHeader("X-Request-ID")),
		zap.Int("rows", len(rows)))

	switch h.shape {
	case ShapeArray:
		ctx.JSON(http.StatusOK, rows)
	case ShapeData:
		ctx.JSON(http.StatusOK, gin.H{"data": rows})
	default:
		ctx.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
	}
}
