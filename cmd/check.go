package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	internalApp "github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dao"
	"github.com/haierkeys/note-attachment-service/pkg/queue"
	"github.com/haierkeys/note-attachment-service/pkg/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkResult 单个后端的检查结果
type checkResult struct {
	name string
	kind string
	err  error
}

var checkCmd = &cobra.Command{
	Use:   "check [-c config_file]",
	Short: "Check connectivity to the configured database, storage and queue",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}

		appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
		if err != nil {
			bootstrapLogger.Error("failed to load config", zap.String("path", configPath), zap.Error(err))
			os.Exit(1)
		}
		bootstrapLogger.Info("config loaded", zap.String("path", configRealpath))

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		results := runChecks(ctx, appConfig, bootstrapLogger)

		failed := false
		for _, r := range results {
			status := "ok"
			if r.err != nil {
				status = "FAIL: " + r.err.Error()
				failed = true
			}
			fmt.Printf("%-9s %-9s %s\n", r.name, r.kind, status)
		}
		if failed {
			os.Exit(1)
		}
	},
}

// runChecks 依次连接数据库、对象存储和消息队列
func runChecks(ctx context.Context, cfg *internalApp.AppConfig, lg *zap.Logger) []checkResult {
	results := make([]checkResult, 0, 3)

	dbCfg := databaseConfig(cfg)
	dbCfg.AutoMigrate = false
	dbResult := checkResult{name: "database", kind: cfg.Database.Type}
	if db, err := dao.NewDBEngineWithConfig(dbCfg, lg); err != nil {
		dbResult.err = err
	} else {
		dbResult.err = db.WithContext(ctx).Exec("SELECT 1").Error
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	results = append(results, dbResult)

	stResult := checkResult{name: "storage", kind: cfg.Storage.Type}
	if st, err := storage.NewClient(&cfg.Storage, lg); err != nil {
		stResult.err = err
	} else {
		stResult.err = st.Ping(ctx)
	}
	results = append(results, stResult)

	qResult := checkResult{name: "queue", kind: cfg.Queue.Type}
	if q, err := queue.NewClient(&cfg.Queue); err != nil {
		qResult.err = err
	} else {
		qResult.err = q.Ping(ctx)
		_ = q.Close()
	}
	results = append(results, qResult)

	return results
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("config", "c", "", "config file")
	checkCmd.Flags().Duration("timeout", 10*time.Second, "overall check timeout")
}
