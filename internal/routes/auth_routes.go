package routes

import (
	"github.com/gin-gonic/gin"

	"pilotos_api/internal/controllers"
)

func AuthRoutes(r *gin.RouterGroup, ac *controllers.AuthController, requireAuth, loginLimit gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", loginLimit, ac.Login)
		auth.POST("/change-password", requireAuth, ac.ChangePassword)
	}

	r.GET("/me", requireAuth, ac.Me)
	r.POST("/logout", ac.Logout)
}
