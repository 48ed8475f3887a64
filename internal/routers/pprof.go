package routers

import (
	"net/http"
	"net/http/pprof"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/metrics"
	"github.com/haierkeys/note-attachment-service/internal/middleware"
	"github.com/haierkeys/note-attachment-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPrefix url prefix of pprof
	DefaultPrefix = "/debug/pprof"
)

// NewPrivateRouter creates the private router: health, prometheus metrics and, in debug mode, pprof
// NewPrivateRouter 创建私有路由：健康检查、prometheus 指标，debug 模式下开启 pprof
func NewPrivateRouter(appContainer *app.App) *gin.Engine {
	runMode := appContainer.Config().Server.RunMode

	r := gin.New()

	if runMode == "debug" {
		r.Use(gin.Recovery())
	} else {
		r.Use(middleware.RecoveryWithLogger(appContainer.Logger()))
	}

	healthHandler := api_router.NewHealthHandler(appContainer)
	r.GET("/health", healthHandler.Check)

	// prom监控
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if runMode == "debug" {
		p := r.Group(DefaultPrefix)
		{
			p.GET("/", pprofHandler(pprof.Index))
			p.GET("/cmdline", pprofHandler(pprof.Cmdline))
			p.GET("/profile", pprofHandler(pprof.Profile))
			p.POST("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/trace", pprofHandler(pprof.Trace))
			p.GET("/allocs", pprofHandler(pprof.Handler("allocs").ServeHTTP))
			p.GET("/block", pprofHandler(pprof.Handler("block").ServeHTTP))
			p.GET("/goroutine", pprofHandler(pprof.Handler("goroutine").ServeHTTP))
			p.GET("/heap", pprofHandler(pprof.Handler("heap").ServeHTTP))
			p.GET("/mutex", pprofHandler(pprof.Handler("mutex").ServeHTTP))
			p.GET("/threadcreate", pprofHandler(pprof.Handler("threadcreate").ServeHTTP))
		}
	}

	return r
}

func pprofHandler(h http.HandlerFunc) gin.HandlerFunc {
	handler := h
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
