package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/requests"
	"github.com/kruegge82/adressCorrector/app/responses"
	"github.com/kruegge82/adressCorrector/app/services"
	"go.uber.org/zap"
)

// AdminController serves cache maintenance, reference reloads and stats.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{adminService: adminService, logger: logger}
}

// SeedReference replaces the reference data. With ?dry_run=true the data is
// only validated.
func (ac *AdminController) SeedReference(c *gin.Context) {
	var req requests.SeedReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	validation := services.ValidateDataset(req.Data)
	if c.Query("dry_run") == "true" {
		c.JSON(http.StatusOK, responses.SeedReferenceResponse{
			ValidationPassed: validation.Passed,
			Errors:           validation.Errors,
			Warnings:         validation.Warnings,
			DryRun:           true,
			Message:          "validation finished",
		})
		return
	}
	if !validation.Passed {
		c.JSON(http.StatusUnprocessableEntity, responses.SeedReferenceResponse{
			ValidationPassed: false,
			Errors:           validation.Errors,
			Warnings:         validation.Warnings,
			Message:          "reference data rejected",
		})
		return
	}

	result, err := ac.adminService.SeedReference(c.Request.Context(), req.Data)
	if err != nil {
		ac.logger.Error("reference seed failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "SEED_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SeedReferenceResponse{
		ValidationPassed: true,
		Warnings:         validation.Warnings,
		Cities:           result.Cities,
		Streets:          result.Streets,
		Districts:        result.Districts,
		Indexed:          result.Indexed,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Message:          "reference data seeded",
	})
}

// ClearCache drops every cached correction.
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.adminService.ClearCache(c.Request.Context()); err != nil {
		ac.logger.Error("cache clear failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache cleared",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// DeleteCacheEntry drops the cached correction of one fingerprint.
func (ac *AdminController) DeleteCacheEntry(c *gin.Context) {
	key := c.Param("key")
	if err := ac.adminService.DeleteCacheEntry(c.Request.Context(), key); err != nil {
		abortWithError(c, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache entry deleted",
		Data:      gin.H{"key": key},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "STATS_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
