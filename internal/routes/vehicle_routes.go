package routes

import (
	"github.com/gin-gonic/gin"

	"pilotos_api/internal/controllers"
)

func VehicleRoutes(r *gin.RouterGroup, vc *controllers.VehicleController, requireAuth gin.HandlerFunc) {
	carros := r.Group("/carros")
	carros.Use(requireAuth)
	{
		carros.POST("", vc.Store)
		carros.GET("/:cpf", vc.Show)
		carros.POST("/:cpf", vc.Store)
		carros.PUT("/:cpf", vc.Update)
	}
}
