package routes

import (
	"github.com/gin-gonic/gin"

	"pilotos_api/internal/controllers"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/models"
)

// AdminRoutes mounts user administration, restricted to ADMIN tokens.
func AdminRoutes(r *gin.RouterGroup, uc *controllers.UserController, requireAuth gin.HandlerFunc) {
	usuarios := r.Group("/usuarios")
	usuarios.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
	{
		usuarios.GET("", uc.Index)
		usuarios.POST("", uc.Store)
		usuarios.GET("/:id", uc.Show)
		usuarios.PUT("/:id", uc.Update)
		usuarios.PATCH("/:id", uc.Update)
		usuarios.DELETE("/:id", uc.Destroy)
	}
}
