package route

import (
	"net/http"

	"github.com/bereanapp/berean/internal/api/controller"
	"github.com/bereanapp/berean/internal/api/middleware"
	"github.com/bereanapp/berean/internal/app"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes builds the gin engine: lifecycle API under /api, the web
// manifest at its fixed path, and everything else served through the
// offline cache engine.
func SetupRoutes(appCtx *app.App, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))
	r.Use(middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})

	mc := controller.NewManifestController(appCtx.Config.Cache.WebManifest)
	r.GET("/manifest.webmanifest", mc.Get)

	wc := controller.NewWorkerController(appCtx.Registration)
	api := r.Group("/api")
	api.GET("/status", wc.Status)
	api.POST("/update", wc.Update)
	api.POST("/message", wc.Message)

	// Everything else is an intercepted resource request.
	gc := controller.NewGatewayController(appCtx.Registration)
	r.NoRoute(gc.Serve)

	return r
}
