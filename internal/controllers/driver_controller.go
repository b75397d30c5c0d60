package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"pilotos_api/internal/logger"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/services"
)

type DriverController struct {
	drivers *services.DriverService
}

func NewDriverController(drivers *services.DriverService) *DriverController {
	return &DriverController{drivers: drivers}
}

func (dc *DriverController) Index(c *gin.Context) {
	pilotos, err := dc.drivers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pilotos)
}

func (dc *DriverController) Store(c *gin.Context) {
	var body services.DriverInput
	if !bind(c, &body) {
		return
	}
	if err := readUploads(c, services.DriverMediaFields, body.Upload); err != nil {
		respondError(c, err)
		return
	}

	created, err := dc.drivers.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}

	fields := logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": created.Piloto.CPFPiloto}
	if created.Usuario != nil {
		fields["usuario_id"] = created.Usuario.ID
		fields["usuario_created"] = created.Usuario.Created
	}
	logger.Audit("pilotos.create", fields)

	c.JSON(http.StatusCreated, created)
}

func (dc *DriverController) Show(c *gin.Context) {
	p, err := dc.drivers.Show(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (dc *DriverController) ShowByEmail(c *gin.Context) {
	p, err := dc.drivers.ShowByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (dc *DriverController) Update(c *gin.Context) {
	var body services.DriverInput
	if !bindOptional(c, &body) {
		return
	}
	if err := readUploads(c, services.DriverMediaFields, body.Upload); err != nil {
		respondError(c, err)
		return
	}

	p, err := dc.drivers.Update(c.Request.Context(), c.Param("cpf"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("pilotos.update", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": p.CPFPiloto})

	c.JSON(http.StatusOK, p)
}

func (dc *DriverController) Destroy(c *gin.Context) {
	cpf := c.Param("cpf")
	if err := dc.drivers.Delete(c.Request.Context(), cpf); err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("pilotos.delete", logrus.Fields{"by": middleware.CurrentUserID(c), "cpf": cpf})

	c.JSON(http.StatusOK, gin.H{"message": "Piloto deleted"})
}

func (dc *DriverController) UploadCnh(c *gin.Context) {
	dc.attach(c, services.DocumentLicense, "CNH uploaded")
}

func (dc *DriverController) UploadTermo(c *gin.Context) {
	dc.attach(c, services.DocumentMembershipTerm, "Termo uploaded")
}

// attach stores the multipart part "file" as a driver document.
func (dc *DriverController) attach(c *gin.Context, kind, message string) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
		return
	}
	data, err := readFormFile(fh)
	if err != nil {
		respondError(c, err)
		return
	}

	ref, err := dc.drivers.AttachDocument(c.Request.Context(), c.Param("cpf"), kind, data, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Audit("pilotos.document", logrus.Fields{"cpf": c.Param("cpf"), "kind": kind})

	c.JSON(http.StatusOK, gin.H{"message": message, "path": ref})
}
