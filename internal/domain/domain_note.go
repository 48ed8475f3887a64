// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoteNotFound 笔记不存在
var ErrNoteNotFound = errors.New("note not found")

// Note 笔记领域模型
type Note struct {
	ID        uuid.UUID
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TagText returns the text sent to the tag generator
// TagText 返回用于生成标签的文本
func (n *Note) TagText() string {
	if n.Title == "" {
		return n.Content
	}
	return n.Title + "\n\n" + n.Content
}
