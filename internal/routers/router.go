package routers

import (
	"time"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/middleware"
	"github.com/haierkeys/note-attachment-service/internal/routers/api_router"
	"github.com/haierkeys/note-attachment-service/pkg/limiter"

	ut "github.com/go-playground/universal-translator"
	"github.com/gin-gonic/gin"
)

// ArchiveRoute 归档请求路由，受限流保护
const ArchiveRoute = "/notes/:noteId/attachmentzipfiles"

// newMethodLimiters 归档请求会触发外部 worker 打包全部附件，按客户端限流
func newMethodLimiters(cfg *app.AppConfig) limiter.Face {
	l := limiter.NewMethodLimiter()
	if cfg.Limiter.ArchivePerSecond <= 0 {
		return l
	}
	burst := cfg.Limiter.ArchiveBurst
	if burst < cfg.Limiter.ArchivePerSecond {
		burst = cfg.Limiter.ArchivePerSecond
	}
	return l.AddBuckets(
		limiter.BucketRule{
			Key:          ArchiveRoute,
			FillInterval: time.Second,
			Capacity:     burst,
			Quantum:      cfg.Limiter.ArchivePerSecond,
		},
	)
}

// NewRouter 创建公开路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()
	r.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
	r.Use(middleware.TraceMiddleware(middleware.TracerConfig{Enabled: cfg.Tracer.Enabled, Header: cfg.Tracer.Header}))
	r.Use(middleware.Metrics())
	r.Use(middleware.AccessLogWithLogger(lg))
	r.Use(middleware.RecoveryWithLogger(lg))
	r.Use(middleware.RateLimiter(newMethodLimiters(cfg)))
	r.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
	r.Use(middleware.LangWithTranslator(uni))

	// multipart 超出内存部分写入临时文件
	r.MaxMultipartMemory = 8 << 20

	// 创建 Handlers（注入 App Container）
	noteHandler := api_router.NewNoteHandler(appContainer)
	attachmentHandler := api_router.NewAttachmentHandler(appContainer)
	archiveHandler := api_router.NewArchiveHandler(appContainer)

	notes := r.Group("/notes")
	{
		notes.POST("", noteHandler.Create)
		notes.GET("", noteHandler.List)
		notes.GET("/:noteId", noteHandler.Get)
		notes.PUT("/:noteId", noteHandler.Update)
		notes.DELETE("/:noteId", noteHandler.Delete)

		notes.GET("/:noteId/attachments", attachmentHandler.List)
		notes.PUT("/:noteId/attachments/:attachmentId", attachmentHandler.Put)
		notes.GET("/:noteId/attachments/:attachmentId", attachmentHandler.Get)
		notes.DELETE("/:noteId/attachments/:attachmentId", attachmentHandler.Delete)

		notes.POST("/:noteId/attachmentzipfiles", archiveHandler.Request)
		notes.GET("/:noteId/attachmentzipfiles/:archiveId", archiveHandler.Get)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
