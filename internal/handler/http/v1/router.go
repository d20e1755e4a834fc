package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	requireAuth := h.auth.RequireAuth()
	optionalAuth := h.auth.OptionalAuth()

	alerts := api.Group("/alerts")
	{
		// Чтение доступно анонимно, токен влияет только на видимость непубличных сообщений
		alerts.GET("", optionalAuth, h.listAlerts)
		alerts.GET("/nearby", optionalAuth, h.nearbyAlerts)
		alerts.GET("/statistics", h.statistics)
		alerts.GET("/heatmap", optionalAuth, h.heatmap)
		alerts.GET("/:id", optionalAuth, h.getAlert)

		alerts.POST("", requireAuth, h.createAlert)
		alerts.PUT("/:id", requireAuth, h.updateAlert)
		alerts.DELETE("/:id", requireAuth, h.deleteAlert)
		alerts.POST("/:id/comments", requireAuth, h.addComment)
		alerts.POST("/:id/actions", requireAuth, h.addAction)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
