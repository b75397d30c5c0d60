package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// DB pings the database.
func (hc *HealthController) DB(c *gin.Context) {
	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		logrus.WithError(err).Error("database ping failed")
		c.JSON(http.StatusInternalServerError, gin.H{"db": "error", "message": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"db": "ok", "now": time.Now().UTC().Format(time.RFC3339)})
}
