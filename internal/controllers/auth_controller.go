package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/models"
	"pilotos_api/internal/services"
)

type loginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type changePasswordInput struct {
	CurrentPassword *string `json:"current_password" form:"current_password"`
	NewPassword     string  `json:"new_password" form:"new_password" binding:"required"`
}

type userSummary struct {
	ID                 uint   `json:"id"`
	Nome               string `json:"nome"`
	Email              string `json:"email"`
	Tipo               string `json:"tipo"`
	MustChangePassword bool   `json:"must_change_password"`
}

type AuthController struct {
	auth *services.AuthService
	jwt  *middleware.JWTManager
}

func NewAuthController(auth *services.AuthService, jwt *middleware.JWTManager) *AuthController {
	return &AuthController{auth: auth, jwt: jwt}
}

func (ac *AuthController) Login(c *gin.Context) {
	var body loginInput
	if !bind(c, &body) {
		return
	}

	user, err := ac.auth.Authenticate(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		logger.Security("auth.login.fail", logrus.Fields{
			"email": strings.ToLower(strings.TrimSpace(body.Username)),
			"ip":    c.ClientIP(),
		})
		respondError(c, err)
		return
	}

	token, err := ac.jwt.GenerateToken(user.ID, user.Tipo, user.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("auth.login", logrus.Fields{"user_id": user.ID, "ip": c.ClientIP()})

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(ac.jwt.TTL().Seconds()),
		"user":         summarize(user),
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.CurrentUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var body changePasswordInput
	if !bind(c, &body) {
		return
	}

	userID := middleware.CurrentUserID(c)
	if err := ac.auth.ChangePassword(c.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("auth.password.change", logrus.Fields{"user_id": userID})

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Logout revokes the presented token when there is a valid one. It answers
// OK either way.
func (ac *AuthController) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		claims, err := ac.jwt.ValidateToken(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err == nil {
			expiresAt := time.Now().Add(ac.jwt.TTL())
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			if err := ac.auth.Revoke(c.Request.Context(), claims.ID, expiresAt); err != nil {
				logrus.WithError(err).Error("revoking token")
			} else {
				logger.Audit("auth.logout", logrus.Fields{"sub": claims.Subject})
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}

func summarize(u *models.User) userSummary {
	return userSummary{
		ID:                 u.ID,
		Nome:               u.Nome,
		Email:              u.Email,
		Tipo:               u.Tipo,
		MustChangePassword: u.MustChangePassword,
	}
}
