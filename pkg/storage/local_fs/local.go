// Package local_fs stores each container as a directory on local disk.
// Package local_fs 将每个容器保存为本地磁盘上的一个目录
//
// Layout:
//
//	<save-path>/<container>/<encoded key>
//	<save-path>/<container>/.meta/<encoded key>.json
//
// Keys too long to escape into one file name are stored under a sha256 name and
// recovered from the "key" field of their sidecar.
package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/haierkeys/note-attachment-service/pkg/fileurl"

	"github.com/pkg/errors"
)

const metaDir = ".meta"

type Config struct {
	SavePath string `yaml:"save-path" default:"storage/attachments"`
}

type LocalFS struct {
	Config *Config

	// locks 保证同一对象的数据文件与 sidecar 一起更新
	locks sync.Map // map[string]*sync.Mutex
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save-path is required")
	}
	if err := os.MkdirAll(conf.SavePath, 0754); err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) containerPath(container string) string {
	return filepath.Join(p.Config.SavePath, fileurl.EncodeName(container))
}

func (p *LocalFS) objectPath(container, key string) string {
	return filepath.Join(p.containerPath(container), fileurl.EncodeName(key))
}

func (p *LocalFS) sidecarPath(container, key string) string {
	return filepath.Join(p.containerPath(container), metaDir, fileurl.EncodeName(key)+".json")
}

func (p *LocalFS) lock(container, key string) func() {
	v, _ := p.locks.LoadOrStore(container+"/"+key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Ping 检查保存目录是否可用
func (p *LocalFS) Ping(ctx context.Context) error {
	if !fileurl.IsDir(p.Config.SavePath) {
		return errors.Errorf("local_fs: save path %s is not a directory", p.Config.SavePath)
	}
	return nil
}
