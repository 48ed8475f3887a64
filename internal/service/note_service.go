package service

import (
	"context"

	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	"github.com/haierkeys/note-attachment-service/pkg/convert"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/logger"
	"github.com/haierkeys/note-attachment-service/pkg/storage"
	"github.com/haierkeys/note-attachment-service/pkg/tagger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Create 创建笔记，未提供标签时自动生成
	Create(ctx context.Context, req *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Get 获取笔记
	Get(ctx context.Context, noteID string) (*dto.NoteDTO, error)

	// Update 更新笔记，未提供标签时重新生成
	Update(ctx context.Context, noteID string, req *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记，随后删除笔记的附件容器和归档容器
	Delete(ctx context.Context, noteID string) error

	// List 分页获取笔记列表
	List(ctx context.Context, page, pageSize int) ([]*dto.NoteDTO, int64, error)
}

// noteService 实现 NoteService 接口
type noteService struct {
	repo    domain.NoteRepository
	storage storage.Storager
	tagger  tagger.Tagger
	logger  *zap.Logger
}

// NewNoteService 创建 NoteService 实例，tg 为 nil 时不生成标签
func NewNoteService(repo domain.NoteRepository, st storage.Storager, tg tagger.Tagger, lg *zap.Logger) NoteService {
	if tg == nil {
		tg = tagger.Noop{}
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{repo: repo, storage: st, tagger: tg, logger: lg}
}

// toDTO 领域模型转 DTO
func (s *noteService) toDTO(n *domain.Note) *dto.NoteDTO {
	out := &dto.NoteDTO{}
	convert.StructAssign(n, out)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// generateTags 调用标签服务，失败时只记录日志
func (s *noteService) generateTags(ctx context.Context, n *domain.Note) []string {
	tags, err := s.tagger.Tags(ctx, n.TagText())
	if err != nil {
		s.logger.Warn("tag generation failed, storing note without tags",
			zap.String(logger.FieldNoteID, n.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	return tags
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, req *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	n := &domain.Note{Title: req.Title, Content: req.Content, Tags: req.Tags}
	if len(n.Tags) == 0 {
		n.Tags = s.generateTags(ctx, n)
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, apperrors.New(code.ErrorDBQuery, err)
	}
	return s.toDTO(created), nil
}

// Get 获取笔记
func (s *noteService) Get(ctx context.Context, noteID string) (*dto.NoteDTO, error) {
	id, err := domain.ParseNoteID(noteID)
	if err != nil {
		return nil, apperrors.New(code.ErrorInvalidParams.WithDetails("noteId: "+err.Error()), err)
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, apperrors.New(code.ErrorNoteNotFound, err)
		}
		return nil, apperrors.New(code.ErrorDBQuery, err)
	}
	return s.toDTO(n), nil
}

// Update 更新笔记
func (s *noteService) Update(ctx context.Context, noteID string, req *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	id, err := domain.ParseNoteID(noteID)
	if err != nil {
		return nil, apperrors.New(code.ErrorInvalidParams.WithDetails("noteId: "+err.Error()), err)
	}

	n := &domain.Note{ID: id, Title: req.Title, Content: req.Content, Tags: req.Tags}
	if len(n.Tags) == 0 {
		n.Tags = s.generateTags(ctx, n)
	}

	updated, err := s.repo.Update(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, apperrors.New(code.ErrorNoteNotFound, err)
		}
		return nil, apperrors.New(code.ErrorDBQuery, err)
	}
	return s.toDTO(updated), nil
}

// Delete 删除笔记
// 数据库记录先删除；容器清理失败只记录日志，留下的孤立容器不会再被访问
func (s *noteService) Delete(ctx context.Context, noteID string) error {
	id, err := domain.ParseNoteID(noteID)
	if err != nil {
		return apperrors.New(code.ErrorInvalidParams.WithDetails("noteId: "+err.Error()), err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return apperrors.New(code.ErrorNoteNotFound, err)
		}
		return apperrors.New(code.ErrorDBQuery, err)
	}

	for _, container := range []string{domain.ContainerNameFor(id), domain.ArchiveContainerFor(id)} {
		if err := s.storage.DeleteContainer(ctx, container); err != nil {
			s.logger.Warn("note container cleanup failed",
				zap.String(logger.FieldContainer, container),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("note deleted", zap.String(logger.FieldNoteID, id.String()))
	return nil
}

// List 分页获取笔记列表
func (s *noteService) List(ctx context.Context, page, pageSize int) ([]*dto.NoteDTO, int64, error) {
	notes, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.New(code.ErrorDBQuery, err)
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.New(code.ErrorDBQuery, err)
	}

	out := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, s.toDTO(n))
	}
	return out, count, nil
}

var _ NoteService = (*noteService)(nil)
