package domain

import (
	"context"

	"github.com/google/uuid"
)

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// Exists 判断笔记是否存在
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// GetByID 根据ID获取笔记，不存在时返回 ErrNoteNotFound
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 更新笔记，不存在时返回 ErrNoteNotFound
	Update(ctx context.Context, note *Note) (*Note, error)

	// Delete 删除笔记及其标签，不存在时返回 ErrNoteNotFound
	Delete(ctx context.Context, id uuid.UUID) error

	// List 按创建时间倒序分页获取笔记列表
	List(ctx context.Context, page, pageSize int) ([]*Note, error)

	// Count 获取笔记数量
	Count(ctx context.Context) (int64, error)
}
