package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/controllers"
)

// SetupWebRoutes serves the service banner and a route overview.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "German address corrector",
			"version": controllers.Version,
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"api": "Address corrector API v1",
			"endpoints": map[string]string{
				"correct":      "POST /v1/addresses/correct",
				"parse":        "POST /v1/addresses/parse",
				"batch":        "POST /v1/addresses/batch",
				"submit_job":   "POST /v1/addresses/jobs",
				"job_status":   "GET /v1/addresses/jobs/:jobID/status",
				"job_results":  "GET /v1/addresses/jobs/:jobID/results",
				"health":       "GET /v1/health",
				"cache_clear":  "POST /v1/admin/cache/clear",
				"cache_delete": "DELETE /v1/admin/cache/:key",
				"stats":        "GET /v1/admin/stats",
				"seed":         "POST /v1/admin/reference/seed",
			},
		})
	})
}
