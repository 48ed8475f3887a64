package service

import (
	"context"
	"io"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	"github.com/haierkeys/note-attachment-service/internal/metrics"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/logger"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/storage/object"
	"github.com/haierkeys/note-attachment-service/pkg/writequeue"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AttachmentService 定义附件业务服务接口
// 附件以笔记为作用域，存放在笔记对应的存储容器中
type AttachmentService interface {
	// Put 上传或覆盖附件，新增时受配额限制
	Put(ctx context.Context, noteID, key string, body io.Reader, size int64, contentType string) (*PutResult, error)

	// Get 获取附件内容，调用方负责关闭 Body
	Get(ctx context.Context, noteID, key string) (*AttachmentContent, error)

	// Delete 删除附件，幂等；alreadyAbsent 表示附件原本就不存在
	Delete(ctx context.Context, noteID, key string) (alreadyAbsent bool, err error)

	// List 列出笔记的全部附件，容器不存在或为空时返回空列表
	List(ctx context.Context, noteID string) ([]*dto.AttachmentDTO, error)
}

// PutResult Put 结果
type PutResult struct {
	// Created 为 true 表示新建，false 表示覆盖
	Created bool
	// Location 附件的访问路径
	Location string
}

// AttachmentContent 附件内容
type AttachmentContent struct {
	Key          string
	ContentType  string
	Size         int64
	LastModified time.Time
	Body         io.ReadCloser
}

// attachmentService 实现 AttachmentService 接口
type attachmentService struct {
	notes   noteResolver
	storage storage.Storager
	guard   *QuotaGuard
	wq      *writequeue.Manager
	config  AttachmentServiceConfig
	logger  *zap.Logger
}

// NewAttachmentService 创建 AttachmentService 实例
// wq 仅在严格配额模式下使用，可为 nil
func NewAttachmentService(repo domain.NoteRepository, st storage.Storager, wq *writequeue.Manager, cfg AttachmentServiceConfig, lg *zap.Logger) AttachmentService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &attachmentService{
		notes:   noteResolver{repo: repo},
		storage: st,
		guard:   NewQuotaGuard(st, cfg.MaxPerNote, lg),
		wq:      wq,
		config:  cfg,
		logger:  lg,
	}
}

// Put 上传附件
// 流程：校验 -> 笔记存在 -> 确保容器 -> 判断 key 是否存在 -> 新增时检查配额 -> 写入内容 -> 写入元数据
func (s *attachmentService) Put(ctx context.Context, noteID, key string, body io.Reader, size int64, contentType string) (*PutResult, error) {
	id, container, err := s.notes.resolve(ctx, noteID, keyCheck(key))
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, apperrors.New(code.ErrorInvalidParams.WithDetails("file: missing body"), nil)
	}
	if s.config.MaxUploadSize > 0 && size > s.config.MaxUploadSize {
		return nil, apperrors.New(code.ErrorAttachmentTooLarge.WithData(map[string]int64{"maxSize": s.config.MaxUploadSize}), nil)
	}
	contentType = object.DefaultContentType(contentType)

	log := s.logger.With(
		zap.String(logger.FieldNoteID, container),
		zap.String(logger.FieldAttachmentKey, key),
	)

	if err := s.storage.EnsureContainer(ctx, container, storage.AccessPrivate); err != nil {
		metrics.RecordAttachmentOp("put", "error")
		return nil, storageFailure(errors.Wrap(err, "ensure container"))
	}

	existed, err := s.storage.Exists(ctx, container, key)
	if err != nil {
		metrics.RecordAttachmentOp("put", "error")
		return nil, storageFailure(errors.Wrap(err, "exists"))
	}

	write := func(ctx context.Context, existed bool) error {
		if !existed {
			if err := s.guard.Admit(ctx, container); err != nil {
				return err
			}
		}
		if err := s.storage.Put(ctx, container, key, body, size, contentType); err != nil {
			return storageFailure(errors.Wrap(err, "put"))
		}
		// 内容已写入但元数据缺失属于可接受的部分失败
		if err := s.storage.SetMetadata(ctx, container, key, map[string]string{object.MetaNoteID: id.String()}); err != nil {
			return storageFailure(errors.Wrap(err, "set metadata"))
		}
		return nil
	}

	if !existed && s.config.StrictQuota && s.wq != nil {
		// 严格模式：同一容器的新增在队列内串行，临界区内重新判断 key 是否存在
		err = s.wq.Execute(ctx, container, func(ctx context.Context) error {
			again, err := s.storage.Exists(ctx, container, key)
			if err != nil {
				return storageFailure(errors.Wrap(err, "exists"))
			}
			existed = again
			return write(ctx, again)
		})
		if err != nil && apperrors.GetAppError(err) == nil {
			err = storageFailure(errors.Wrap(err, "write queue"))
		}
	} else {
		err = write(ctx, existed)
	}

	if err != nil {
		if apperrors.Is(err, code.ErrorAttachmentQuotaExceeded) {
			metrics.RecordAttachmentOp("put", "rejected")
		} else {
			metrics.RecordAttachmentOp("put", "error")
			log.Error("attachment put failed", zap.Error(err))
		}
		return nil, err
	}

	result := &PutResult{Created: !existed, Location: AttachmentLocation(container, key)}
	if result.Created {
		metrics.RecordAttachmentOp("put", "created")
	} else {
		metrics.RecordAttachmentOp("put", "updated")
	}
	metrics.RecordUploadBytes(size)
	log.Info("attachment stored", zap.Bool("created", result.Created), zap.Int64(logger.FieldSize, size))
	return result, nil
}

// Get 获取附件
func (s *attachmentService) Get(ctx context.Context, noteID, key string) (*AttachmentContent, error) {
	_, container, err := s.notes.resolve(ctx, noteID, keyCheck(key))
	if err != nil {
		return nil, err
	}

	obj, err := s.storage.Get(ctx, container, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrContainerNotFound) {
			metrics.RecordAttachmentOp("get", "absent")
			return nil, apperrors.New(code.ErrorAttachmentNotFound, err)
		}
		metrics.RecordAttachmentOp("get", "error")
		return nil, storageFailure(errors.Wrap(err, "get"))
	}

	metrics.RecordAttachmentOp("get", "ok")
	return &AttachmentContent{
		Key:          key,
		ContentType:  object.DefaultContentType(obj.ContentType),
		Size:         obj.Size,
		LastModified: obj.LastModified,
		Body:         obj.Body,
	}, nil
}

// Delete 删除附件，不存在时视为成功
func (s *attachmentService) Delete(ctx context.Context, noteID, key string) (bool, error) {
	_, container, err := s.notes.resolve(ctx, noteID, keyCheck(key))
	if err != nil {
		return false, err
	}

	existed, err := s.storage.Exists(ctx, container, key)
	if err != nil {
		metrics.RecordAttachmentOp("delete", "error")
		return false, storageFailure(errors.Wrap(err, "exists"))
	}
	if !existed {
		metrics.RecordAttachmentOp("delete", "absent")
		return true, nil
	}

	if err := s.storage.Delete(ctx, container, key); err != nil {
		metrics.RecordAttachmentOp("delete", "error")
		return false, storageFailure(errors.Wrap(err, "delete"))
	}

	metrics.RecordAttachmentOp("delete", "deleted")
	s.logger.Info("attachment deleted",
		zap.String(logger.FieldNoteID, container),
		zap.String(logger.FieldAttachmentKey, key),
	)
	return false, nil
}

// List 列出附件，按 key 排序
func (s *attachmentService) List(ctx context.Context, noteID string) ([]*dto.AttachmentDTO, error) {
	_, container, err := s.notes.resolve(ctx, noteID)
	if err != nil {
		return nil, err
	}

	objs, err := s.storage.ListObjects(ctx, container)
	if err != nil {
		metrics.RecordAttachmentOp("list", "error")
		return nil, storageFailure(errors.Wrap(err, "list"))
	}

	out := make([]*dto.AttachmentDTO, 0, len(objs))
	for _, o := range objs {
		out = append(out, &dto.AttachmentDTO{
			AttachmentID:     o.Key,
			ContentType:      o.ContentType,
			CreatedDate:      o.CreatedAt,
			LastModifiedDate: o.LastModified,
			Length:           o.Size,
		})
	}
	slices.SortFunc(out, func(a, b *dto.AttachmentDTO) int {
		return strings.Compare(a.AttachmentID, b.AttachmentID)
	})

	metrics.RecordAttachmentOp("list", "ok")
	return out, nil
}

// AttachmentLocation 附件的访问路径
func AttachmentLocation(container, key string) string {
	return "/notes/" + container + "/attachments/" + url.PathEscape(key)
}

var _ AttachmentService = (*attachmentService)(nil)
