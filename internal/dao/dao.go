// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/note-attachment-service/internal/model"
	"github.com/haierkeys/note-attachment-service/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Port            int
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象
type Dao struct {
	Db     *gorm.DB
	logger *zap.Logger
}

// New 创建 Dao
func New(db *gorm.DB, lg *zap.Logger) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{Db: db, logger: lg}
}

// WithContext 返回绑定上下文的会话
func (d *Dao) WithContext(ctx context.Context) *gorm.DB {
	return d.Db.WithContext(ctx)
}

// Transaction 在事务中执行
func (d *Dao) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.Db.WithContext(ctx).Transaction(fn)
}

// NewDBEngineWithConfig opens the configured database and applies the pool settings.
// NewDBEngineWithConfig 根据配置打开数据库并设置连接池
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "dao: open "+c.Type)
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 只允许单写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(util.ParseDurationOr(c.ConnMaxLifetime, 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(util.ParseDurationOr(c.ConnMaxIdleTime, 10*time.Minute))

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, errors.Wrap(err, "dao: auto migrate")
		}
	}

	if lg != nil {
		lg.Info("database connected", zap.String("type", c.Type))
	}
	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(c.Type) {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		host := c.Host
		if c.Port > 0 {
			host = fmt.Sprintf("%s:%d", c.Host, c.Port)
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, host, c.Name, charset, c.ParseTime,
		)), nil
	case "postgres":
		port := c.Port
		if port == 0 {
			port = 5432
		}
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.UserName, c.Password, c.Name, port, sslMode,
		)), nil
	case "sqlite", "":
		if c.Path != ":memory:" && !strings.HasPrefix(c.Path, "file:") {
			if err := os.MkdirAll(filepath.Dir(c.Path), 0o754); err != nil {
				return nil, errors.Wrap(err, "dao: create sqlite dir")
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, errors.Errorf("dao: unsupported database type %q", c.Type)
}
