package dto

import "time"

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Title   string   `json:"title" form:"title" binding:"required,max=255"`
	Content string   `json:"content" form:"content"`
	Tags    []string `json:"tags" form:"tags" binding:"omitempty,max=32,dive,max=128"`
}

// NoteUpdateRequest 更新笔记请求参数，Tags 为空时重新生成
type NoteUpdateRequest struct {
	Title   string   `json:"title" form:"title" binding:"required,max=255"`
	Content string   `json:"content" form:"content"`
	Tags    []string `json:"tags" form:"tags" binding:"omitempty,max=32,dive,max=128"`
}
