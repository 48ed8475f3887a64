package service

import (
	"context"

	"github.com/haierkeys/note-attachment-service/internal/metrics"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/logger"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// QuotaGuard admits a new attachment only while the container holds fewer objects
// than the limit. The decision holds at observation time only; callers that need
// exclusion must serialize admission and write themselves.
// QuotaGuard 配额守卫：容器内对象数小于上限时才允许新增附件，判断仅在观察时刻有效
type QuotaGuard struct {
	storage storage.Storager
	limit   int
	logger  *zap.Logger
}

// NewQuotaGuard 创建配额守卫
func NewQuotaGuard(st storage.Storager, limit int, lg *zap.Logger) *QuotaGuard {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &QuotaGuard{storage: st, limit: limit, logger: lg}
}

// Limit 返回配额上限
func (g *QuotaGuard) Limit() int {
	return g.limit
}

// Admit counts the objects in container and rejects with the quota code, carrying
// the limit, when the count has reached it.
// Admit 统计容器对象数，达到上限时返回配额错误（携带 limit）
func (g *QuotaGuard) Admit(ctx context.Context, container string) error {
	objs, err := g.storage.ListObjects(ctx, container)
	if err != nil {
		return storageFailure(errors.Wrap(err, "quota: list "+container))
	}

	if len(objs) >= g.limit {
		metrics.RecordQuotaRejection()
		g.logger.Info("attachment quota reached",
			zap.String(logger.FieldContainer, container),
			zap.Int("count", len(objs)),
			zap.Int(logger.FieldLimit, g.limit),
		)
		return apperrors.New(code.ErrorAttachmentQuotaExceeded.WithData(QuotaExceededData{Limit: g.limit}), nil)
	}
	return nil
}

// QuotaExceededData 配额错误附带的数据
type QuotaExceededData struct {
	Limit int `json:"limit"`
}
