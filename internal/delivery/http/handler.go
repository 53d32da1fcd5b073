package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/personamatcher/backend/internal/domain"
)

// RecommendationService is the orchestration entrypoint the handlers depend
// on. The error return is reserved for unexpected internal failures; normal
// "nothing found" outcomes are an empty product list.
type RecommendationService interface {
	FindProducts(ctx context.Context, description string) ([]domain.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	discovery RecommendationService
	captioner domain.ImageCaptioner
	tmpDir    string
}

// NewHandler creates a new HTTP handler
func NewHandler(discovery RecommendationService, captioner domain.ImageCaptioner) *Handler {
	return &Handler{
		discovery: discovery,
		captioner: captioner,
		tmpDir:    os.TempDir(),
	}
}

// Root returns the liveness payload
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Persona Matcher backend is running",
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "personamatcher-backend",
		"version": "1.0.0",
	})
}

// RecommendFromText returns bag recommendations for a style description
func (h *Handler) RecommendFromText(c *gin.Context) {
	if h.discovery == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"detail": "recommendation service not configured",
		})
		return
	}

	var req domain.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	products, err := h.discovery.FindProducts(c.Request.Context(), req.InputText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": products})
}

// RecommendFromImage returns bag recommendations for an uploaded image. The
// upload is written to a scoped temporary file that is removed on every exit
// path; the captioner turns the stored file into a description for the same
// discovery flow as the text endpoint.
func (h *Handler) RecommendFromImage(c *gin.Context) {
	if h.discovery == nil || h.captioner == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"detail": "recommendation service not configured",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file upload: " + err.Error()})
		return
	}

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".jpg"
	}

	tmp, err := os.CreateTemp(h.tmpDir, "upload-*"+ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to store upload: " + err.Error()})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(fileHeader, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to store upload: " + err.Error()})
		return
	}

	description, err := h.captioner.Describe(c.Request.Context(), tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	products, err := h.discovery.FindProducts(c.Request.Context(), description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": products})
}
