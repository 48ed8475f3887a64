package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将 DAO Note 转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	if m == nil {
		return nil, nil
	}
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "dao: corrupt note id %q", m.ID)
	}
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, t.Tag)
	}
	return &domain.Note{
		ID:        id,
		Title:     m.Title,
		Content:   m.Content,
		Tags:      tags,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) *model.Note {
	id := note.ID.String()
	m := &model.Note{
		ID:        id,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	for i, tag := range note.Tags {
		m.Tags = append(m.Tags, model.NoteTag{NoteID: id, Tag: tag, Sort: i})
	}
	return m
}

// Exists 判断笔记是否存在
func (r *noteRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.dao.WithContext(ctx).Model(&model.Note{}).Where("id = ?", id.String()).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "dao: note exists")
	}
	return count > 0, nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	var m model.Note
	err := r.dao.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Where("id = ?", id.String()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, errors.Wrap(err, "dao: get note")
	}
	return r.toDomain(&m)
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	m := r.toModel(note)
	if err := r.dao.WithContext(ctx).Create(m).Error; err != nil {
		return nil, errors.Wrap(err, "dao: create note")
	}
	return r.GetByID(ctx, note.ID)
}

// Update 更新笔记，标签整体替换
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	note.UpdatedAt = time.Now()
	m := r.toModel(note)

	err := r.dao.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.Note{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"title":      m.Title,
			"content":    m.Content,
			"updated_at": m.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoteNotFound
		}
		if err := tx.Where("note_id = ?", m.ID).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}
		if len(m.Tags) > 0 {
			return tx.Create(&m.Tags).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "dao: update note")
	}
	return r.GetByID(ctx, note.ID)
}

// Delete 删除笔记及其标签
func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.dao.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id.String()).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id.String()).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoteNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			return err
		}
		return errors.Wrap(err, "dao: delete note")
	}
	return nil
}

// List 分页获取笔记列表
func (r *noteRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Note, error) {
	if page < 1 {
		page = 1
	}
	var ms []*model.Note
	err := r.dao.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "dao: list notes")
	}

	notes := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		n, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Count 获取笔记数量
func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.dao.WithContext(ctx).Model(&model.Note{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "dao: count notes")
	}
	return count, nil
}

var _ domain.NoteRepository = (*noteRepository)(nil)
