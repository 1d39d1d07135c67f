package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"plate-events-service/internal/config"
	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/grouping"
	"plate-events-service/internal/service"
)

type Handler struct {
	readsService *service.ReadsService
	config       *config.Config
	log          zerolog.Logger
}

func NewHandler(
	readsService *service.ReadsService,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		readsService: readsService,
		config:       cfg,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1")
	{
		public.POST("/anpr/events", h.createRead)
		public.GET("/plates", h.listReads)
		public.GET("/plates/grouped", h.listGroupedReads)
		public.GET("/stats/daily", h.dailyStats)
		public.GET("/stats/hourly", h.hourlyStats)
		public.GET("/stats/top-plates", h.topPlates)
		public.GET("/stats/overview", h.overview)
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.DELETE("/plates", h.cleanupReads)
	}
}

func (h *Handler) createRead(c *gin.Context) {
	var payload anpr.ReadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.readsService.ProcessIncomingRead(c.Request.Context(), payload)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "ok",
		"read_id": result.ReadID,
		"plate":   result.Plate,
	})
}

func (h *Handler) listReads(c *gin.Context) {
	filter, err := service.ParseFilter(c.Query("search"), strings.TrimSpace(c.Query("date_from")), strings.TrimSpace(c.Query("date_to")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		h.handleError(c, err)
		return
	}
	perPage, err := queryInt(c, "per_page", grouping.DefaultPerPage)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.readsService.ListReads(c.Request.Context(), filter, page, perPage)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) listGroupedReads(c *gin.Context) {
	filter, err := service.ParseFilter(c.Query("search"), strings.TrimSpace(c.Query("date_from")), strings.TrimSpace(c.Query("date_to")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	opts, err := h.groupingOptions(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.readsService.GroupedReads(c.Request.Context(), filter, opts)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// groupingOptions starts from the configured defaults and applies the query
// parameters on top.
func (h *Handler) groupingOptions(c *gin.Context) (grouping.Options, error) {
	gc := h.config.Grouping
	opts := grouping.Options{
		WindowSeconds:       gc.WindowSeconds,
		SimilarityThreshold: gc.SimilarityThreshold,
		MaxSimilarityBatch:  gc.MaxSimilarityBatch,
	}

	policy, err := grouping.ParsePolicy(c.DefaultQuery("policy", gc.Policy))
	if err != nil {
		return opts, err
	}
	opts.Policy = policy

	if opts.WindowSeconds, err = queryFloat(c, "window_seconds", gc.WindowSeconds); err != nil {
		return opts, err
	}
	if opts.SimilarityThreshold, err = queryFloat(c, "similarity_threshold", gc.SimilarityThreshold); err != nil {
		return opts, err
	}
	if opts.Page, err = queryInt(c, "page", 1); err != nil {
		return opts, err
	}
	if opts.PerPage, err = queryInt(c, "per_page", grouping.DefaultPerPage); err != nil {
		return opts, err
	}
	return opts, nil
}

func (h *Handler) dailyStats(c *gin.Context) {
	days, err := queryInt(c, "days", 30)
	if err != nil {
		h.handleError(c, err)
		return
	}

	counts, err := h.readsService.DailyStats(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) hourlyStats(c *gin.Context) {
	counts, err := h.readsService.HourlyStats(c.Request.Context(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) topPlates(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		h.handleError(c, err)
		return
	}
	days, err := queryInt(c, "days", 7)
	if err != nil {
		h.handleError(c, err)
		return
	}

	plates, err := h.readsService.TopPlates(c.Request.Context(), limit, days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, plates)
}

func (h *Handler) overview(c *gin.Context) {
	stats, err := h.readsService.Overview(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) cleanupReads(c *gin.Context) {
	days, err := queryInt(c, "older_than_days", h.config.Retention.Days)
	if err != nil {
		h.handleError(c, err)
		return
	}

	deleted, err := h.readsService.CleanupOldReads(c.Request.Context(), days)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, grouping.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, grouping.ErrBatchTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errInvalidParam(key)
	}
	return v, nil
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errInvalidParam(key)
	}
	return v, nil
}

func errInvalidParam(key string) error {
	return fmt.Errorf("%w: invalid %s", service.ErrInvalidInput, key)
}
