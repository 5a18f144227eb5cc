package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velsh/expense_tracker_app/internal/apperrors"
	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/middleware"
)

// conversionHandler handles HTTP requests for currency conversion.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
}

func newConversionHandler(cs portssvc.ConversionSvcFacade) *conversionHandler {
	return &conversionHandler{conversionService: cs}
}

// registerConversionRoutes registers the conversion route.
func registerConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := newConversionHandler(conversionService)
	rg.GET("/convert", h.convert)
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Converts an amount using the frozen historical rate when an expense ID is given, otherwise the current rate, an inverse rate, or the unconverted amount as a last resort. With strict=true a missing rate is an error instead.
// @Tags conversion
// @Produce json
// @Param amount query number true "Amount to convert"
// @Param from query string true "Source currency code (3 letters)"
// @Param to query string true "Target currency code (3 letters)"
// @Param expenseID query string false "Expense whose frozen rate takes priority"
// @Param strict query bool false "Fail instead of falling back to the unconverted amount"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid request parameters"
// @Failure 502 {object} map[string]string "No rate available in strict mode"
// @Router /convert [get]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConversionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Failed to bind query for convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	converted, err := h.conversionService.Convert(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateUnavailable) {
			logger.Warn("No rate available for strict conversion",
				slog.String("from", req.From),
				slog.String("to", req.To),
			)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Conversion failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert amount"})
		return
	}

	c.JSON(http.StatusOK, dto.ConversionResponse{
		Amount:          req.Amount,
		From:            req.From,
		To:              req.To,
		ConvertedAmount: converted,
	})
}
