package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	internalApp "github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dao"
	"github.com/haierkeys/note-attachment-service/internal/routers"
	"github.com/haierkeys/note-attachment-service/internal/task"
	"github.com/haierkeys/note-attachment-service/pkg/logger"
	"github.com/haierkeys/note-attachment-service/pkg/safe_close"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	validatorV10 "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

type Server struct {
	logger            *zap.Logger             // Logger // 日志对象
	config            *internalApp.AppConfig  // App configuration (injected dependency) // 应用配置（注入的依赖）
	db                *gorm.DB                // Database connection // 数据库连接
	ut                *ut.UniversalTranslator // Translator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先于配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.port) > 0 {
		port := runEnv.port
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		appConfig.Server.HttpPort = port
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// 初始化日志器（使用注入的配置）
	if err := initLoggerWithConfig(s, appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	// 初始化存储目录（使用注入的配置）
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	// 初始化数据库（使用注入的配置）
	db, err := initDatabaseWithConfig(appConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	// 初始化 App Container（直接使用 AppConfig）
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	// 初始化验证器
	uni, err := initValidatorWithLogger(s.logger)
	if err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}
	s.ut = uni

	// 启动调度器
	initScheduler(s)

	banner := `
    _   __      __          ___   __  __             __                         __
   / | / /___  / /____     /   | / /_/ /_____ ______/ /_  ____ ___  ___  ____  / /_
  /  |/ / __ \/ __/ _ \   / /| |/ __/ __/ __ ` + "`" + `/ ___/ __ \/ __ ` + "`" + `__ \/ _ \/ __ \/ __/
 / /|  / /_/ / /_/  __/  / ___ / /_/ /_/ /_/ / /__/ / / / / / / / /  __/ / / / /_
/_/ |_/\____/\__/\___/  /_/  |_\__/\__/\__,_/\___/_/ /_/_/ /_/ /_/\___/_/ /_/\__/ `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouter(s.app),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("private api service", s.privateHttpServer)
	}

	// 注册 App Container 的优雅关闭（使用 Shutdown 方法）
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		if s.app != nil {
			ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()

			if err := s.app.Shutdown(ctx); err != nil {
				s.logger.Error("failed to shutdown app container", zap.Error(err))
			} else {
				s.logger.Info("App container shutdown gracefully")
			}
		}
	})

	return s, nil
}

// serve 在 safe_close 下运行 HTTP 服务，监听失败时广播关闭信号
func (s *Server) serve(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			if !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error(name+" err", zap.Error(err))
				s.sc.SendCloseSignal(err)
			}
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// 停止HTTP服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

func initScheduler(s *Server) {
	// 创建任务管理器
	manager := task.NewManager(s.app, s.sc)

	// 注册所有任务(业务层控制)
	if err := manager.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}

	// 启动任务调度器
	manager.Start()
}

// initLoggerWithConfig 初始化日志器（使用注入的配置）
func initLoggerWithConfig(s *Server, cfg *internalApp.AppConfig) error {
	lg, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	s.logger = lg

	return nil
}

// initValidatorWithLogger 初始化验证器，返回 UniversalTranslator
func initValidatorWithLogger(lg *zap.Logger) (*ut.UniversalTranslator, error) {
	customValidator := validator.NewCustomValidator()
	customValidator.Engine()
	binding.Validator = customValidator

	var uni *ut.UniversalTranslator

	validate, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		lg.Warn("validator engine is not go-playground/validator, translations disabled")
		return nil, nil
	}

	// 校验信息中使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	uni = ut.New(en.New(), en.New(), zh.New())

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	return uni, nil
}

// databaseConfig 转换 AppConfig.DatabaseConfig 为 dao.DatabaseConfig
func databaseConfig(cfg *internalApp.AppConfig) dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            cfg.Database.Type,
		Path:            cfg.Database.Path,
		UserName:        cfg.Database.UserName,
		Password:        cfg.Database.Password,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		TablePrefix:     cfg.Database.TablePrefix,
		AutoMigrate:     cfg.Database.AutoMigrate,
		Charset:         cfg.Database.Charset,
		ParseTime:       cfg.Database.ParseTime,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		RunMode:         cfg.Server.RunMode,
	}
}

// initDatabaseWithConfig 初始化数据库（使用注入的配置）
func initDatabaseWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) (*gorm.DB, error) {
	return dao.NewDBEngineWithConfig(databaseConfig(cfg), lg)
}

// initStorageWithConfig 初始化本地目录（使用注入的配置）
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{}
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	if cfg.Storage.Type == storage.LOCAL {
		dirs = append(dirs, cfg.Storage.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}

// GetConfig 获取应用配置
func (s *Server) GetConfig() *internalApp.AppConfig {
	return s.config
}
