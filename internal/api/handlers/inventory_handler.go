package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/andresuchdata/stockpilot/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type InventoryHandler struct {
	service *service.InventoryAnalyticsService
}

func NewInventoryHandler(service *service.InventoryAnalyticsService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) parseFilter(c *gin.Context) (domain.InventoryFilter, error) {
	filter := domain.InventoryFilter{
		Scope:    strings.TrimSpace(c.Query("scope")),
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	if label := strings.TrimSpace(c.Query("status")); label != "" {
		status, ok := domain.ParseStatus(label)
		if !ok {
			return filter, errors.New("unknown status " + label)
		}
		filter.Status = status
	}

	return filter, nil
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	items, total, err := h.service.ListInventory(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to fetch inventory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}

func (h *InventoryHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), c.Query("scope"))
	if err != nil {
		respondError(c, "failed to fetch summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.service.GetAlerts(c.Request.Context(), c.Query("scope"))
	if err != nil {
		respondError(c, "failed to fetch alerts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": alerts,
		"total": len(alerts),
	})
}

func (h *InventoryHandler) GetProduct(c *gin.Context) {
	product, err := h.service.AnalyzeProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to analyze product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *InventoryHandler) RestockProduct(c *gin.Context) {
	request, err := h.service.RestockProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to restock product", err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *InventoryHandler) RestockAll(c *gin.Context) {
	requests, err := h.service.RestockAll(c.Request.Context(), c.Query("scope"))
	if err != nil {
		respondError(c, "failed to restock inventory", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidProduct):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNothingToRestock):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
