package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	// 75 polls at 2s plus inference
	generationTimeout = 180 * time.Second
	batchTimeout      = 10 * time.Minute
	accountTimeout    = 30 * time.Second
)

// SfxPipeline is the generation service behind the REST endpoints
type SfxPipeline interface {
	Generate(ctx context.Context, req models.SfxRequest) (*models.SfxResult, error)
	CreateVariation(ctx context.Context, req models.VariationRequest) (*models.VariationResult, error)
	GenerateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error)
	AccountUsage(ctx context.Context) (json.RawMessage, error)
}

type SfxHandler struct {
	service SfxPipeline
}

func NewSfxHandler(service SfxPipeline) *SfxHandler {
	return &SfxHandler{service: service}
}

func (h *SfxHandler) Generate(c *gin.Context) {
	var req models.SfxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := logger.WithContext(c)
	fields["description"] = req.Description
	fields["engine"] = string(req.Engine)
	logger.Info("SFX generation requested", fields)

	ctx, cancel := context.WithTimeout(c.Request.Context(), generationTimeout)
	defer cancel()

	result, err := h.service.Generate(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SfxHandler) CreateVariation(c *gin.Context) {
	var req models.VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generationTimeout)
	defer cancel()

	result, err := h.service.CreateVariation(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SfxHandler) GenerateBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), batchTimeout)
	defer cancel()

	result, err := h.service.GenerateBatch(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SfxHandler) AccountUsage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), accountTimeout)
	defer cancel()

	info, err := h.service.AccountUsage(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", info)
}

// respondError maps caller mistakes to 400 and everything upstream to 502
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
