package routes

import (
	"github.com/gin-gonic/gin"

	"pilotos_api/internal/controllers"
)

func DriverRoutes(r *gin.RouterGroup, dc *controllers.DriverController, requireAuth gin.HandlerFunc) {
	pilotos := r.Group("/pilotos")
	pilotos.Use(requireAuth)
	{
		pilotos.GET("", dc.Index)
		pilotos.POST("", dc.Store)
		pilotos.GET("/email/:email", dc.ShowByEmail)
		pilotos.GET("/:cpf", dc.Show)
		pilotos.PUT("/:cpf", dc.Update)
		pilotos.PATCH("/:cpf", dc.Update)
		pilotos.DELETE("/:cpf", dc.Destroy)
		pilotos.POST("/:cpf/cnh", dc.UploadCnh)
		pilotos.POST("/:cpf/termo", dc.UploadTermo)
	}
}
