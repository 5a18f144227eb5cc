package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velsh/expense_tracker_app/internal/core/ports/services"
	"github.com/velsh/expense_tracker_app/internal/core/ratecache"
	"github.com/velsh/expense_tracker_app/internal/dto"
	"github.com/velsh/expense_tracker_app/internal/middleware"
)

// ratesHandler handles HTTP requests for historical-rate snapshots, backfill,
// freshness and cache administration.
type ratesHandler struct {
	historicalRateService portssvc.HistoricalRateSvcFacade
	migrationService      portssvc.MigrationSvcFacade
	freshnessService      portssvc.FreshnessSvcFacade
	cache                 *ratecache.Cache
	defaultTimeout        time.Duration
}

func newRatesHandler(hrs portssvc.HistoricalRateSvcFacade, ms portssvc.MigrationSvcFacade, fs portssvc.FreshnessSvcFacade, cache *ratecache.Cache, defaultTimeout time.Duration) *ratesHandler {
	return &ratesHandler{
		historicalRateService: hrs,
		migrationService:      ms,
		freshnessService:      fs,
		cache:                 cache,
		defaultTimeout:        defaultTimeout,
	}
}

// registerRatesRoutes registers routes related to rate management.
func registerRatesRoutes(rg *gin.RouterGroup, hrs portssvc.HistoricalRateSvcFacade, ms portssvc.MigrationSvcFacade, fs portssvc.FreshnessSvcFacade, cache *ratecache.Cache, defaultTimeout time.Duration) {
	h := newRatesHandler(hrs, ms, fs, cache, defaultTimeout)

	rg.POST("/expenses/:expenseID/rates", h.saveRatesForExpense)

	rates := rg.Group("/rates")
	{
		rates.POST("/migrate", h.migrateExistingExpenses)
		rates.POST("/refresh", h.ensureFreshRates)
		rates.GET("/cache/metrics", h.getCacheMetrics)
		rates.DELETE("/cache", h.invalidateCache)
	}
}

// saveRatesForExpense godoc
// @Summary Snapshot the current rate for an expense
// @Description Starts a best-effort, detached historical-rate snapshot for the expense. The response never reports a rate failure; the snapshot is fire-and-forget.
// @Tags rates
// @Accept json
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Param body body dto.SaveRatesRequest false "Optional recorded-at date (RFC 3339)"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid date format"
// @Router /expenses/{expenseID}/rates [post]
func (h *ratesHandler) saveRatesForExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expenseID")

	var req dto.SaveRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		logger.Warn("Failed to bind JSON for saveRatesForExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	recordedAt := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected RFC 3339"})
			return
		}
		recordedAt = parsed
	}

	h.historicalRateService.SaveRatesForExpenseAsync(expenseID, recordedAt)
	c.JSON(http.StatusAccepted, gin.H{"status": "snapshot scheduled"})
}

// migrateExistingExpenses godoc
// @Summary Backfill historical rates for existing expenses
// @Description Scans all expenses lacking historical rates and populates them from inline legacy rates, the rate history, or live rates. Idempotent; per-expense failures are reported in the errors list without aborting the run.
// @Tags rates
// @Produce json
// @Success 200 {object} dto.MigrationResult
// @Router /rates/migrate [post]
func (h *ratesHandler) migrateExistingExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Starting historical rate migration")

	result := h.migrationService.MigrateExistingExpenses(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// ensureFreshRates godoc
// @Summary Ensure today's rates are refreshed
// @Description Checks whether rates were already refreshed today and, if not, races a refresh against a timeout. A timeout is not an error; the caller proceeds with available rates.
// @Tags rates
// @Produce json
// @Param timeoutMs query int false "Refresh timeout in milliseconds"
// @Success 200 {object} dto.FreshnessResult
// @Failure 502 {object} map[string]string "Refresh failed"
// @Router /rates/refresh [post]
func (h *ratesHandler) ensureFreshRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	timeout := h.defaultTimeout
	if raw := c.Query("timeoutMs"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timeoutMs must be a positive integer"})
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	result, err := h.freshnessService.EnsureFresh(c.Request.Context(), timeout)
	if err != nil {
		logger.Error("Rate refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// getCacheMetrics godoc
// @Summary Exchange rate cache metrics
// @Tags rates
// @Produce json
// @Success 200 {object} dto.CacheMetricsResponse
// @Router /rates/cache/metrics [get]
func (h *ratesHandler) getCacheMetrics(c *gin.Context) {
	m := h.cache.Snapshot()
	c.JSON(http.StatusOK, dto.CacheMetricsResponse{
		Hits:                 m.Hits,
		Misses:               m.Misses,
		Entries:              m.Entries,
		Evictions:            m.Evictions,
		Expired:              m.Expired,
		ProviderCallsAvoided: m.ProviderCallsAvoided,
		HitRate:              m.HitRate,
		AvgAccessCount:       m.AvgAccessCount,
		OldestEntryAgeMs:     m.OldestEntryAge.Milliseconds(),
		NewestEntryAgeMs:     m.NewestEntryAge.Milliseconds(),
	})
}

// invalidateCache godoc
// @Summary Invalidate cached exchange rates
// @Description Removes every cached entry involving the given currency, or clears the whole cache when no currency is given.
// @Tags rates
// @Produce json
// @Param currency query string false "Currency code to invalidate"
// @Success 200 {object} dto.InvalidateCacheResponse
// @Router /rates/cache [delete]
func (h *ratesHandler) invalidateCache(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency := c.Query("currency")
	var removed int
	if currency == "" {
		removed = h.cache.Len()
		h.cache.Clear()
	} else {
		removed = h.cache.Invalidate(currency)
	}

	logger.Info("Cache invalidated", slog.String("currency", currency), slog.Int("removed", removed))
	c.JSON(http.StatusOK, dto.InvalidateCacheResponse{RemovedCount: removed})
}
