package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/app/responses"
)

// SetupAPIRoutes registers the /v1 API.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/correct", addressController.Correct)
			addresses.POST("/parse", addressController.Parse)
			addresses.POST("/batch", addressController.Batch)
			addresses.POST("/jobs", addressController.SubmitJob)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/cache/clear", adminController.ClearCache)
			admin.DELETE("/cache/:key", adminController.DeleteCacheEntry)
			admin.GET("/stats", adminController.GetStats)
			admin.POST("/reference/seed", adminController.SeedReference)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned probes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})
}

// SetupAllRoutes installs middleware and every route.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController, opts Options) {
	setupMiddleware(router, opts)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse(
			"NOT_FOUND", c.Request.Method+" "+c.Request.URL.Path+" does not exist", c.GetString(controllers.RequestIDKey)))
	})
}
