package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/services"
)

type VehicleController struct {
	vehicles *services.VehicleService
}

func NewVehicleController(vehicles *services.VehicleService) *VehicleController {
	return &VehicleController{vehicles: vehicles}
}

func (vc *VehicleController) Show(c *gin.Context) {
	carro, err := vc.vehicles.Show(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carro)
}

// Store accepts the CPF from the path or, on POST /carros, from the body.
func (vc *VehicleController) Store(c *gin.Context) {
	var body services.VehicleInput
	if !bindOptional(c, &body) {
		return
	}
	if err := readUploads(c, services.VehicleMediaFields, body.Upload); err != nil {
		respondError(c, err)
		return
	}

	carro, err := vc.vehicles.Create(c.Request.Context(), c.Param("cpf"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("carros.create", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": carro.CPFPiloto})

	c.JSON(http.StatusCreated, carro)
}

func (vc *VehicleController) Update(c *gin.Context) {
	var body services.VehicleInput
	if !bindOptional(c, &body) {
		return
	}
	if err := readUploads(c, services.VehicleMediaFields, body.Upload); err != nil {
		respondError(c, err)
		return
	}

	carro, err := vc.vehicles.Update(c.Request.Context(), c.Param("cpf"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("carros.update", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": carro.CPFPiloto})

	c.JSON(http.StatusOK, carro)
}
