package webdav

import (
	"context"
	"path"
	"strings"

	"github.com/haierkeys/note-attachment-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
	"go.uber.org/zap"
)

const metaDir = ".meta"

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	Path       string `yaml:"path"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV stores each container as a remote collection with a .meta sidecar collection.
// WebDAV 将每个容器保存为远端目录，并在 .meta 子目录中保存 sidecar
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
	logger *zap.Logger
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config, logger *zap.Logger) (*WebDAV, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		logger.Warn("webdav connect failed, will retry on demand", zap.Error(err))
	}

	return &WebDAV{
		Client: c,
		Config: conf,
		logger: logger,
	}, nil
}

func (w *WebDAV) root() string {
	return "/" + strings.Trim(path.Join(w.Config.Path, w.Config.CustomPath), "/")
}

func (w *WebDAV) containerPath(container string) string {
	return path.Join(w.root(), fileurl.EncodeName(container))
}

func (w *WebDAV) objectPath(container, key string) string {
	return path.Join(w.containerPath(container), fileurl.EncodeName(key))
}

func (w *WebDAV) sidecarPath(container, key string) string {
	return path.Join(w.containerPath(container), metaDir, fileurl.EncodeName(key)+".json")
}

// Ping 检查 WebDAV 服务器是否可达
func (w *WebDAV) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Client.Connect(); err != nil {
		return errors.Wrap(err, "webdav")
	}
	return nil
}
