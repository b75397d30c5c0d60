package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pilotos_api/internal/config"
	"pilotos_api/internal/controllers"
	"pilotos_api/internal/middleware"
	"pilotos_api/internal/services"
	"pilotos_api/internal/storage"
)

// SetupRouter wires services and controllers and mounts every route under
// cfg.APIPrefix. Access logs go to accessLog.
func SetupRouter(cfg config.Config, db *gorm.DB, accessLog io.Writer) *gin.Engine {
	if accessLog == nil {
		accessLog = io.Discard
	}

	r := gin.New()
	r.Use(ginlog.SetLogger(
		ginlog.WithWriter(accessLog),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{cfg.APIPrefix + "/db"}),
	))
	r.Use(gin.Recovery())

	disk := storage.NewDisk(cfg.MediaDir, cfg.MediaURLPrefix)
	jwt := middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := services.NewAuthService(db)
	requireAuth := middleware.RequireAuth(jwt, authService)

	api := r.Group(cfg.APIPrefix)

	HealthRoutes(api, controllers.NewHealthController(db))
	AuthRoutes(api, controllers.NewAuthController(authService, jwt), requireAuth,
		middleware.RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst))
	AdminRoutes(api, controllers.NewUserController(services.NewUserService(db, cfg.DefaultUserPassword)), requireAuth)
	DriverRoutes(api, controllers.NewDriverController(services.NewDriverService(db, disk, cfg.DefaultUserPassword)), requireAuth)
	AddressRoutes(api, controllers.NewAddressController(services.NewAddressService(db)), requireAuth)
	VehicleRoutes(api, controllers.NewVehicleController(services.NewVehicleService(db, disk)), requireAuth)

	return r
}

func HealthRoutes(r *gin.RouterGroup, hc *controllers.HealthController) {
	r.GET("/db", hc.DB)
}
