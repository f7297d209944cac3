package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// RotationService is the part of the rotator the HTTP API drives.
// *app.Rotator implements it.
type RotationService interface {
	View() domain.View
	State() domain.RotationState
	Tick(ctx context.Context) (domain.View, bool, error)
	Next(ctx context.Context) (domain.View, error)
	AddQuote(ctx context.Context, text string) (domain.View, error)
	ImportQuotes(ctx context.Context, texts []string) (domain.View, int, error)
	EditQuote(ctx context.Context, index int, text string) (domain.View, error)
	RemoveQuote(ctx context.Context, index int) (domain.View, error)
	SetInterval(ctx context.Context, hours, minutes int) (domain.View, error)
	SetStyle(ctx context.Context, style domain.DisplayStyle) (domain.View, error)
}

// QuoteHandler serves the current quote, the quote list and the settings.
type QuoteHandler struct {
	service RotationService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service RotationService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// GetCurrent handles GET /api/v1/quote.
func (h *QuoteHandler) GetCurrent(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewViewResponse(h.service.View()))
}

// Next handles POST /api/v1/quote/next.
func (h *QuoteHandler) Next(c *gin.Context) {
	view, err := h.service.Next(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewViewResponse(view))
}

// Tick handles POST /api/v1/rotation/tick. It runs the scheduled check now
// and reports whether the quote moved.
func (h *QuoteHandler) Tick(c *gin.Context) {
	view, changed, err := h.service.Tick(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TickResponse{Changed: changed, View: dto.NewViewResponse(view)})
}

// ListQuotes handles GET /api/v1/quotes?limit&cursor.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.PaginationRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	state := h.service.State()

	page, err := dto.Paginate(dto.NewQuoteItems(state.Quotes, state.CurrentIndex), req)
	if err != nil {
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, page)
}

// AddQuote handles POST /api/v1/quotes.
func (h *QuoteHandler) AddQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, err := h.service.AddQuote(c.Request.Context(), req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewViewResponse(view))
}

// ImportQuotes handles POST /api/v1/quotes/import.
func (h *QuoteHandler) ImportQuotes(c *gin.Context) {
	var req dto.ImportRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, added, err := h.service.ImportQuotes(c.Request.Context(), req.Quotes)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Added: added, View: dto.NewViewResponse(view)})
}

// EditQuote handles PUT /api/v1/quotes/:index.
func (h *QuoteHandler) EditQuote(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, err := h.service.EditQuote(c.Request.Context(), index, req.Text)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewViewResponse(view))
}

// RemoveQuote handles DELETE /api/v1/quotes/:index.
func (h *QuoteHandler) RemoveQuote(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	view, err := h.service.RemoveQuote(c.Request.Context(), index)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewViewResponse(view))
}

// GetSettings handles GET /api/v1/settings.
func (h *QuoteHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSettingsResponse(h.service.View()))
}

// SetInterval handles PUT /api/v1/settings/interval.
func (h *QuoteHandler) SetInterval(c *gin.Context) {
	var req dto.IntervalRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, err := h.service.SetInterval(c.Request.Context(), *req.Hours, *req.Minutes)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(view))
}

// SetStyle handles PUT /api/v1/settings/style.
func (h *QuoteHandler) SetStyle(c *gin.Context) {
	var req dto.StyleRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, err := h.service.SetStyle(c.Request.Context(), req.DisplayStyle())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSettingsResponse(view))
}

// RegisterRoutes registers the quote, rotation and settings routes.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quote", h.GetCurrent)
	rg.POST("/quote/next", h.Next)
	rg.POST("/rotation/tick", h.Tick)

	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.AddQuote)
	quotes.POST("/import", h.ImportQuotes)
	quotes.PUT("/:index", h.EditQuote)
	quotes.DELETE("/:index", h.RemoveQuote)

	settings := rg.Group("/settings")
	settings.GET("", h.GetSettings)
	settings.PUT("/interval", h.SetInterval)
	settings.PUT("/style", h.SetStyle)
}

// indexParam parses the :index path parameter, writing a 400 when it is
// not an integer.
func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		dto.HandleErrorCode(c, dto.ErrorCodeBadRequest, "quote index must be an integer")
		return 0, false
	}

	return index, true
}
