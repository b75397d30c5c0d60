package routes

import (
	"github.com/gin-gonic/gin"

	"pilotos_api/internal/controllers"
)

func AddressRoutes(r *gin.RouterGroup, ac *controllers.AddressController, requireAuth gin.HandlerFunc) {
	endereco := r.Group("/endereco")
	endereco.Use(requireAuth)
	{
		endereco.POST("", ac.Store)
		endereco.GET("/:cpf", ac.Show)
		endereco.POST("/:cpf", ac.Store)
		endereco.PUT("/:cpf", ac.Update)
	}
}
