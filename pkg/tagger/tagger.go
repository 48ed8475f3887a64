// Package tagger is the client for the external AI tag generation service.
// Package tagger 外部 AI 标签生成服务客户端
package tagger

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Tagger 根据文本生成标签
type Tagger interface {
	Tags(ctx context.Context, text string) ([]string, error)
}

// Config 标签服务配置，Endpoint 为空时禁用
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout" default:"10s"`
	// MaxTags 最多保留的标签数
	MaxTags int `yaml:"max-tags" default:"10"`
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Tags []string `json:"tags"`
}

// HTTPTagger POSTs {"text": ...} and expects {"tags": [...]}.
// HTTPTagger 以 POST {"text": ...} 请求并期望返回 {"tags": [...]}
type HTTPTagger struct {
	endpoint string
	maxTags  int
	client   *http.Client
}

func NewHTTPTagger(endpoint string, timeout time.Duration, maxTags int) *HTTPTagger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTagger{
		endpoint: endpoint,
		maxTags:  maxTags,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTagger) Tags(ctx context.Context, text string) ([]string, error) {
	body, err := sonic.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, errors.Wrap(err, "tagger")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "tagger")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "tagger")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "tagger")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("tagger: unexpected status %d", resp.StatusCode)
	}

	var out tagResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "tagger")
	}
	return normalize(out.Tags, t.maxTags), nil
}

// normalize 去除空白与重复标签，并截断到 max 个
func normalize(tags []string, max int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// Noop 不生成任何标签
type Noop struct{}

func (Noop) Tags(ctx context.Context, text string) ([]string, error) {
	return nil, nil
}
