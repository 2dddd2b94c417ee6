// Package api exposes customer pages, map data and queue status over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/search"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/gin-gonic/gin"
)

// CustomerLoader loads customer data for both view modes.
type CustomerLoader interface {
	ListPage(ctx context.Context, state search.State) (*models.Page, error)
	LoadMap(ctx context.Context, state search.State) (*service.MapResult, error)
}

// QueueStatus reports the state of the geocoding queue.
type QueueStatus interface {
	Len() int
	Busy() bool
	Processed() int
}

type Handler struct {
	log       *slog.Logger
	customers CustomerLoader
	queue     QueueStatus
}

// NewRouter builds the gin engine with all routes registered. queue may be nil when
// lookups are disabled.
func NewRouter(log *slog.Logger, customers CustomerLoader, queue QueueStatus) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	RegisterRoutes(router, log, customers, queue)

	return router
}

// RegisterRoutes attaches the API routes to router.
func RegisterRoutes(router gin.IRouter, log *slog.Logger, customers CustomerLoader, queue QueueStatus) {
	handler := Handler{log: log, customers: customers, queue: queue}

	router.GET("/customers", handler.ListCustomers)
	router.GET("/customers/map", handler.MapCustomers)
	router.POST("/search", handler.Search)
	router.GET("/colors", handler.Colors)
	router.GET("/geocoding/status", handler.GeocodingStatus)
}

func (h *Handler) ListCustomers(c *gin.Context) {
	state := search.Parse(c.Request.URL.RawQuery)

	page, err := h.customers.ListPage(c.Request.Context(), state)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not load customers", "details": err.Error()})
		return
	}

	state.JumpTo(page.Current, page.Pages)
	c.JSON(http.StatusOK, newPageResponse(page, state))
}

func (h *Handler) MapCustomers(c *gin.Context) {
	state := search.Parse(c.Request.URL.RawQuery)

	result, err := h.customers.LoadMap(c.Request.Context(), state)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not load map", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, newMapResponse(result))
}

// Search merges submitted filter values into the current query and starts over at
// the first page.
func (h *Handler) Search(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	state := search.Parse(c.Request.URL.RawQuery)
	updates := make(map[string]string, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		updates[key] = c.Request.PostForm.Get(key)
	}
	state.Apply(updates)
	state.ResetPage()

	c.JSON(http.StatusOK, gin.H{"query": state.Encode()})
}

func (h *Handler) Colors(c *gin.Context) {
	c.JSON(http.StatusOK, models.ColorOptions)
}

func (h *Handler) GeocodingStatus(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusOK, statusResponse{Enabled: false})
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Enabled:   true,
		Busy:      h.queue.Busy(),
		Queued:    h.queue.Len(),
		Processed: h.queue.Processed(),
	})
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
