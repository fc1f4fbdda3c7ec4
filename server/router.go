package server

import (
	"github.com/ecomops/devicegate/internal/remote"
	"github.com/ecomops/devicegate/internal/session"
	"github.com/ecomops/devicegate/pkg/bus"
	"github.com/ecomops/devicegate/server/handles"
	"github.com/ecomops/devicegate/server/middlewares"
	"github.com/gin-gonic/gin"
)

// Init wires the local surface. Only the trust status and the login gate are
// reachable while a lock is active; everything else sits behind LockGuard.
func Init(e *gin.Engine, client *remote.Client, b *bus.Bus, rec *session.Reconciler) {
	handles.Client = client
	handles.Bus = b
	handles.Reconciler = rec

	api := e.Group("/api")
	api.GET("/trust/status", handles.TrustStatus)
	api.POST("/auth/login", handles.Login)

	guarded := api.Group("", middlewares.LockGuard)
	guarded.POST("/auth/logout", handles.Logout)
	guarded.GET("/me", handles.Me)

	my := guarded.Group("/devices/my")
	my.GET("", handles.MyDevices)
	my.DELETE("/clear/all", handles.ClearMyDevices)
	my.DELETE("/:deviceId", handles.RemoveMyDevice)

	users := guarded.Group("/devices/users/:userId")
	users.GET("", handles.UserDevices)
	users.PATCH("/:deviceId/block", handles.BlockUserDevice)
	users.PATCH("/:deviceId/unblock", handles.UnblockUserDevice)
	users.DELETE("/clear/all", handles.ClearUserDevices)
	users.DELETE("/:deviceId", handles.RemoveUserDevice)
}
