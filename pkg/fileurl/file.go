package fileurl

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// GetExePath gets path of current execution file
// GetExePath 获取当前执行文件所在目录
func GetExePath() string {
	file, _ := exec.LookPath(os.Args[0])
	path, _ := filepath.Abs(file)
	return filepath.Dir(path)
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(path string, suffix string) string {
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}

// MaxEncodedNameLen bounds an encoded name so that it plus a ".json" sidecar
// suffix stays under the common 255 byte file name limit.
const MaxEncodedNameLen = 200

// hashedPrefix never appears in url.PathEscape output since '%' is escaped there.
const hashedPrefix = "%h"

// EncodeName turns an arbitrary object key into a single safe path element.
// Separators are escaped and a leading dot is encoded so the result never
// collides with "." / ".." or hidden bookkeeping directories.
// Keys whose escaped form exceeds MaxEncodedNameLen are stored under a sha256 name;
// callers keep the original key alongside (see IsHashedName).
// EncodeName 将任意对象 key 编码为单个安全的路径元素，过长时改用 sha256 名称
func EncodeName(key string) string {
	name := url.PathEscape(key)
	name = strings.ReplaceAll(name, "\\", "%5C")
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	if len(name) > MaxEncodedNameLen {
		sum := sha256.Sum256([]byte(key))
		return hashedPrefix + hex.EncodeToString(sum[:])
	}
	return name
}

// IsHashedName reports whether name was produced from a key too long to escape in place.
// The key cannot be recovered from such a name.
// IsHashedName 判断名称是否为过长 key 的哈希名
func IsHashedName(name string) bool {
	return strings.HasPrefix(name, hashedPrefix)
}

// DecodeName 还原 EncodeName 编码的 key
func DecodeName(name string) (string, error) {
	if IsHashedName(name) {
		return "", ErrHashedName
	}
	return url.PathUnescape(name)
}

// ErrHashedName 哈希名称无法还原 key
var ErrHashedName = errors.New("fileurl: hashed name cannot be decoded")
