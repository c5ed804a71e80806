package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/erazemk/logistika/internal/logging"
	"github.com/erazemk/logistika/internal/service"
)

// NewRouter creates the API router with all endpoints registered. Extra
// middleware (CORS, for instance) runs after request logging and before
// authentication.
func NewRouter(engine *service.Engine, jwtSecret string, log zerolog.Logger, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(log), gin.Recovery())
	r.Use(middleware...)

	authHandler := &AuthHandler{Engine: engine, JWTSecret: jwtSecret, Log: log}
	usersHandler := &UsersHandler{Engine: engine}
	stockHandler := &StockHandler{Engine: engine}
	requestsHandler := &RequestsHandler{Engine: engine}
	issuancesHandler := &IssuancesHandler{Engine: engine}
	repairsHandler := &RepairsHandler{Engine: engine}
	notificationsHandler := &NotificationsHandler{Engine: engine}

	api := r.Group("/api")

	// Public: login.
	api.POST("/auth/login", authHandler.Login)

	// Everything else needs a valid, unrevoked token. Role checks happen in
	// the service layer so the API and its callers share one rule set.
	authed := api.Group("", AuthMiddleware(jwtSecret, engine.DB))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.PUT("/auth/password", authHandler.ChangePassword)

	authed.GET("/users", usersHandler.List)
	authed.POST("/users", usersHandler.Create)
	authed.GET("/users/:id", usersHandler.Get)
	authed.PUT("/users/:id", usersHandler.Update)
	authed.PUT("/users/:id/password", usersHandler.ResetPassword)
	authed.DELETE("/users/:id", usersHandler.Delete)

	authed.GET("/stock", stockHandler.List)
	authed.POST("/stock", stockHandler.Create)
	authed.GET("/stock/:id", stockHandler.Get)
	authed.PUT("/stock/:id", stockHandler.Update)
	authed.POST("/stock/:id/restock", stockHandler.Restock)

	authed.GET("/requests", requestsHandler.List)
	authed.POST("/requests", requestsHandler.Create)
	authed.GET("/requests/:id", requestsHandler.Get)
	authed.PUT("/requests/:id/status", requestsHandler.Transition)

	authed.GET("/issuances", issuancesHandler.List)
	authed.POST("/issuances", issuancesHandler.Create)

	authed.GET("/repairs", repairsHandler.List)
	authed.POST("/repairs", repairsHandler.Create)
	authed.GET("/repairs/:id", repairsHandler.Get)
	authed.PUT("/repairs/:id/photo", repairsHandler.UploadPhoto)
	authed.PUT("/repairs/:id/status", repairsHandler.Assess)
	authed.GET("/under-repair", repairsHandler.ListUnderRepair)
	authed.PUT("/under-repair/:id/status", repairsHandler.Advance)
	authed.GET("/photos/:ref", repairsHandler.GetPhoto)

	authed.GET("/notifications", notificationsHandler.List)
	authed.PUT("/notifications/:id/read", notificationsHandler.MarkRead)
	authed.GET("/audit", notificationsHandler.Audit)

	return r
}
