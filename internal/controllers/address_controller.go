package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/services"
)

type AddressController struct {
	addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	return &AddressController{addresses: addresses}
}

func (ac *AddressController) Show(c *gin.Context) {
	e, err := ac.addresses.Show(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Store accepts the CPF from the path or, on POST /endereco, from the body.
func (ac *AddressController) Store(c *gin.Context) {
	var body services.AddressInput
	if !bindOptional(c, &body) {
		return
	}

	e, err := ac.addresses.Create(c.Request.Context(), c.Param("cpf"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("endereco.create", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": e.CPFPiloto})

	c.JSON(http.StatusCreated, e)
}

func (ac *AddressController) Update(c *gin.Context) {
	var body services.AddressInput
	if !bindOptional(c, &body) {
		return
	}

	e, err := ac.addresses.Update(c.Request.Context(), c.Param("cpf"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("endereco.update", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": e.CPFPiloto})

	c.JSON(http.StatusOK, e)
}
