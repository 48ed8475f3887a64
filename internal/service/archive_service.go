package service

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/internal/metrics"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/logger"
	"github.com/haierkeys/note-attachment-service/pkg/queue"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ArchiveService 定义归档业务服务接口
// 归档由外部 worker 异步生成，这里只负责投递请求和读取结果
type ArchiveService interface {
	// RequestArchive 请求为笔记的全部附件生成归档
	RequestArchive(ctx context.Context, noteID string) (*ArchiveResult, error)

	// GetArchive 读取已生成的归档，尚未生成时返回归档不存在
	GetArchive(ctx context.Context, noteID, archiveID string) (*AttachmentContent, error)
}

// ArchiveResult RequestArchive 结果
type ArchiveResult struct {
	// NoContent 笔记没有附件，未投递任何任务
	NoContent bool
	// ArchiveID 归档 ID
	ArchiveID string
	// Location 归档生成后的访问地址
	Location string
	// Pending 任务已投递，归档尚未生成
	Pending bool
}

// archiveService 实现 ArchiveService 接口
type archiveService struct {
	notes   noteResolver
	storage storage.Storager
	queue   queue.Queuer
	config  ArchiveServiceConfig
	logger  *zap.Logger
}

// NewArchiveService 创建 ArchiveService 实例
func NewArchiveService(repo domain.NoteRepository, st storage.Storager, q queue.Queuer, cfg ArchiveServiceConfig, lg *zap.Logger) ArchiveService {
	if lg == nil {
		lg = zap.NewNop()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = "attachment-zip-requests"
	}
	return &archiveService{
		notes:   noteResolver{repo: repo},
		storage: st,
		queue:   q,
		config:  cfg,
		logger:  lg,
	}
}

// RequestArchive 投递归档请求
// 没有附件时返回 NoContent 且不会入队
func (s *archiveService) RequestArchive(ctx context.Context, noteID string) (*ArchiveResult, error) {
	_, container, err := s.notes.resolve(ctx, noteID)
	if err != nil {
		return nil, err
	}

	if err := s.storage.EnsureContainer(ctx, container, storage.AccessPrivate); err != nil {
		metrics.RecordArchiveRequest("error")
		return nil, storageFailure(errors.Wrap(err, "archive: ensure container"))
	}

	objs, err := s.storage.ListObjects(ctx, container)
	if err != nil {
		metrics.RecordArchiveRequest("error")
		return nil, storageFailure(errors.Wrap(err, "archive: list"))
	}
	if len(objs) == 0 {
		metrics.RecordArchiveRequest("empty")
		return &ArchiveResult{NoContent: true}, nil
	}

	archiveID := uuid.New().String() + domain.ArchiveSuffix
	payload, err := sonic.Marshal(domain.ArchiveJob{NoteID: container, ArchiveID: archiveID})
	if err != nil {
		metrics.RecordArchiveRequest("error")
		return nil, apperrors.New(code.ErrorDispatchFailure, errors.Wrap(err, "archive: encode job"))
	}

	log := s.logger.With(
		zap.String(logger.FieldNoteID, container),
		zap.String(logger.FieldArchiveID, archiveID),
		zap.String(logger.FieldQueue, s.config.QueueName),
	)

	if err := s.queue.Enqueue(ctx, s.config.QueueName, payload); err != nil {
		metrics.RecordArchiveRequest("error")
		log.Error("archive enqueue failed", zap.Error(err))
		return nil, apperrors.New(code.ErrorDispatchFailure, errors.Wrap(err, "archive: enqueue"))
	}

	metrics.RecordArchiveRequest("accepted")
	log.Info("archive requested", zap.Int("attachments", len(objs)))

	return &ArchiveResult{
		ArchiveID: archiveID,
		Location:  ArchiveLocation(s.config.LocationPrefix, container, archiveID),
		Pending:   true,
	}, nil
}

// GetArchive 读取归档
func (s *archiveService) GetArchive(ctx context.Context, noteID, archiveID string) (*AttachmentContent, error) {
	id, _, err := s.notes.resolve(ctx, noteID, func() error {
		if !validArchiveID(archiveID) {
			return apperrors.New(code.ErrorInvalidParams.WithDetails("archiveId: malformed"), nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	obj, err := s.storage.Get(ctx, domain.ArchiveContainerFor(id), archiveID)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrContainerNotFound) {
			return nil, apperrors.New(code.ErrorArchiveNotFound, err)
		}
		return nil, storageFailure(errors.Wrap(err, "archive: get"))
	}

	contentType := obj.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "application/zip"
	}
	return &AttachmentContent{
		Key:          archiveID,
		ContentType:  contentType,
		Size:         obj.Size,
		LastModified: obj.LastModified,
		Body:         obj.Body,
	}, nil
}

// ArchiveLocation 归档访问地址：<prefix>/notes/{noteId}/attachmentzipfiles/{archiveId}
func ArchiveLocation(prefix, container, archiveID string) string {
	return strings.TrimRight(prefix, "/") + "/notes/" + container + "/attachmentzipfiles/" + archiveID
}

// validArchiveID 归档 ID 格式：uuid + .zip
func validArchiveID(archiveID string) bool {
	raw, ok := strings.CutSuffix(archiveID, domain.ArchiveSuffix)
	if !ok || len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

var _ ArchiveService = (*archiveService)(nil)
