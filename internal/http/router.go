// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"motorpool/internal/http/handlers"
	"motorpool/internal/http/middleware"
	"motorpool/internal/modules/identity"
	"motorpool/internal/modules/notification"
	"motorpool/internal/modules/ride"
	"motorpool/internal/modules/usage"
	"motorpool/internal/modules/vehicle"
	"motorpool/internal/realtime"
)

type RouterDeps struct {
	Rides         *ride.Service
	Vehicles      *vehicle.Service
	Notifications *notification.Service
	Usage         *usage.Service
	Hub           *realtime.Hub
	Verifier      middleware.TokenVerifier
	Log           *logrus.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Vehicles)
	api.POST("/rides", rideHandler.Create)
	api.GET("/rides/:id", rideHandler.Get)
	api.PUT("/rides/:id", rideHandler.Update)
	api.POST("/rides/:id/start", rideHandler.Start)
	api.POST("/rides/:id/complete", rideHandler.Complete)
	api.POST("/rides/:id/cancel", rideHandler.Cancel)
	api.GET("/rides/:id/available-vehicles", rideHandler.AvailableVehicles)

	approvals := api.Group("")
	approvals.Use(middleware.RequireRoles(identity.RoleSupervisor, identity.RoleAdmin))
	approvals.POST("/rides/:id/approve", rideHandler.Approve)
	approvals.POST("/rides/:id/reject", rideHandler.Reject)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles, deps.Rides)
	api.GET("/vehicles/:id", vehicleHandler.Get)
	api.GET("/vehicles/available", vehicleHandler.FindAvailable)

	fleet := api.Group("")
	fleet.Use(middleware.RequireRoles(identity.RoleAdmin, identity.RoleInspector))
	fleet.POST("/vehicles", vehicleHandler.Create)
	fleet.POST("/vehicles/:id/freeze", vehicleHandler.Freeze)
	fleet.POST("/vehicles/:id/unfreeze", vehicleHandler.Unfreeze)
	fleet.POST("/vehicles/:id/withdraw", vehicleHandler.Withdraw)
	fleet.POST("/vehicles/:id/archive", vehicleHandler.Archive)

	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	api.GET("/notifications", notificationHandler.ListMine)

	usageHandler := handlers.NewUsageHandler(deps.Usage)
	reports := api.Group("")
	reports.Use(middleware.RequireRoles(identity.RoleAdmin, identity.RoleInspector))
	reports.GET("/usage", usageHandler.Period)
	reports.POST("/usage/recompute", usageHandler.Recompute)

	wsHandler := handlers.NewWSHandler(deps.Hub)
	api.GET("/ws", wsHandler.Subscribe)

	return r
}
