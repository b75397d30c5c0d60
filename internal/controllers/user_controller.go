package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/models"
	"pilotos_api/internal/services"
)

// userCreated is a new user plus, when one was provisioned, its password.
type userCreated struct {
	models.User
	TempPassword string `json:"temp_password,omitempty"`
}

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) Index(c *gin.Context) {
	page, err := uc.users.List(c.Request.Context(), services.UserListParams{
		Search:  c.Query("search"),
		Page:    cast.ToInt(c.Query("page")),
		PerPage: cast.ToInt(c.Query("per_page")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (uc *UserController) Store(c *gin.Context) {
	var body services.CreateUserInput
	if !bind(c, &body) {
		return
	}

	user, temp, err := uc.users.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("users.create", logrus.Fields{
		"by":      middleware.CurrentUserID(c),
		"user_id": user.ID,
		"tipo":    user.Tipo,
	})

	c.JSON(http.StatusCreated, userCreated{User: *user, TempPassword: temp})
}

func (uc *UserController) Show(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	user, err := uc.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var body services.UpdateUserInput
	if !bindOptional(c, &body) {
		return
	}

	user, err := uc.users.Update(c.Request.Context(), id, body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("users.update", logrus.Fields{"by": middleware.CurrentUserID(c), "user_id": user.ID})

	c.JSON(http.StatusOK, user)
}

func (uc *UserController) Destroy(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	if err := uc.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("users.delete", logrus.Fields{"by": middleware.CurrentUserID(c), "user_id": id})

	c.Status(http.StatusNoContent)
}

// userID parses the :id path parameter; a malformed id is answered as not found.
func userID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return 0, false
	}
	return uint(id), true
}
