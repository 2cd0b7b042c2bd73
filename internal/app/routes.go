package app

import (
	"context"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zjgaokao/major-advisor/internal/config"
)

// routes builds the router. Middleware order: recovery first, then Sentry
// (re-panicking into recovery), request ids, access log, metrics, headers.
func (a *Application) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(requestContextMiddleware())
	router.Use(loggingMiddleware(a.logger))
	router.Use(metricsMiddleware(a.metrics))
	router.Use(securityHeadersMiddleware())

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.Metrics),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.GET("/options", a.handleOptions)
	api.GET("/majors", a.handleListMajors)
	api.GET("/majors/:university/:majorCode", a.handleGetMajor)
	api.GET("/export/majors", a.handleExportMajors)

	limited := api.Group("", rateLimitMiddleware(a.limiter))
	limited.POST("/recommendations", a.handleRecommendPOST)
	limited.GET("/recommendations", a.handleRecommendGET)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "接口不存在。", Code: "not_found"})
	})

	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.catalog.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: catalog unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalog unavailable",
		})
		return
	}

	count, err := a.catalog.CountMajors(ctx)
	if err != nil || count == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalog empty",
		})
		return
	}

	features := gin.H{"llm_recommendations": a.service.LLMEnabled()}
	if a.recommender != nil {
		features["llm_provider"] = a.recommender.Provider().String()
		features["llm_model"] = a.recommender.Model()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"catalog":  gin.H{"backend": a.catalog.Backend(), "majors": count},
		"features": features,
	})
}
