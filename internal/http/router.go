package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brainwaves/internal/service"
)

// NewRouter wires middlewares and routes. Everything hangs off /api; the
// profile and catalog routes accept both teacher and profile tokens, the
// rest is teacher-only with user administration behind the superuser gate.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	profileH *ProfileHandler,
	groupH *GroupHandler,
	catalogH *CatalogHandler,
	userH *UserHandler,
	configH *ConfigHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)
	auth.PUT("/password", JWTAuthMiddleware(jwtSvc), userH.ChangePassword)

	// Creation is open: the group share token in the body is the credential.
	api.POST("/profiles", profileH.CreateProfile)

	profiles := api.Group("/profiles", ProfileOrUserAuthMiddleware(jwtSvc))
	profiles.GET("/:id", profileH.GetProfile)
	profiles.POST("/:id/answer", profileH.SubmitAnswer)
	profiles.PUT("/:id/name", profileH.UpdateName)
	profiles.POST("/:id/complete", profileH.Complete)
	profiles.DELETE("/:id", profileH.DeleteProfile)
	profiles.GET("/:id/scores", profileH.Scores)
	profiles.GET("/:id/recommendations", profileH.Recommendations)

	catalog := api.Group("", ProfileOrUserAuthMiddleware(jwtSvc))
	catalog.GET("/profiler-types", catalogH.ListProfilerTypes)
	catalog.GET("/profiler-types/:name", catalogH.GetProfilerType)
	catalog.GET("/practices/:source", catalogH.GetPracticeTaxonomy)

	groups := api.Group("/groups", JWTAuthMiddleware(jwtSvc))
	groups.GET("", groupH.ListGroups)
	groups.GET("/:name", groupH.GetGroup)
	groups.POST("", groupH.CreateGroup)
	groups.PUT("/:name", groupH.UpdateGroup)
	groups.POST("/:name/token", groupH.RegenerateToken)
	groups.DELETE("/:name", groupH.DeleteGroup)

	config := api.Group("/config", JWTAuthMiddleware(jwtSvc))
	config.GET("/:key", configH.GetConfig)
	config.PUT("/:key", RequireSuperuser(), configH.SetConfig)

	users := api.Group("/users", JWTAuthMiddleware(jwtSvc), RequireSuperuser())
	users.GET("", userH.ListUsers)
	users.POST("", userH.CreateUser)
	users.POST("/:id/reset-password", userH.ResetPassword)

	return r
}

// zapLoggerMiddleware logs one line per request.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
