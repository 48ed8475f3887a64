package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseSize parses human readable sizes such as "512KB", "20MB" or "1GB" into bytes
// ParseSize 解析 "512KB"、"20MB"、"1GB" 等大小字符串为字节数
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	units := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}
	for _, u := range units {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
			if err != nil {
				return 0, err
			}
			if n < 0 {
				return 0, fmt.Errorf("negative size %q", s)
			}
			if n > math.MaxInt64/u.mult {
				return 0, fmt.Errorf("size %q overflows int64", s)
			}
			return n * u.mult, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return n, nil
}
