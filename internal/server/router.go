package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/modules/handler"
	"github.com/buildvault/bimlibrary/internal/pkg/logger"
	"github.com/buildvault/bimlibrary/internal/pkg/metrics"
)

// NewRouter wires the HTTP surface. All catalog routes sit behind the
// tenant middleware; health and metrics do not.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.HTTPMetrics,
	assetHandler *handler.AssetHandler,
	viewSetHandler *handler.ViewSetHandler,
	hierarchyHandler *handler.HierarchyHandler,
) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes

	if cfg.Telemetry.Enabled {
		r.Use(otelgin.Middleware(cfg.App.Name))
	}
	r.Use(logger.GinMiddleware(log))
	r.Use(m.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.GetPrometheusHandler()))

	api := r.Group("/", TenantMiddleware())

	assets := api.Group("/assets")
	{
		assets.POST("", assetHandler.CreateAsset)
		assets.POST("/persist-retry", assetHandler.RetryPersist)
		assets.POST("/:asset_id/versions", assetHandler.CreateVersion)
		assets.PATCH("/:asset_id/location", assetHandler.MoveAsset)
		assets.DELETE("/:asset_id", assetHandler.DeleteAsset)
		assets.POST("/:asset_id/restore", assetHandler.RestoreAsset)
		assets.GET("/:asset_id/download", assetHandler.DownloadAsset)
	}

	viewSets := api.Group("/view-sets")
	{
		viewSets.POST("", viewSetHandler.CreateViewSet)
		viewSets.GET("", viewSetHandler.ListViewSets)
		viewSets.GET("/:set_id/assets", viewSetHandler.ResolveViewSet)
	}

	api.GET("/hierarchy", hierarchyHandler.GetHierarchy)

	return r
}
