package domain

import "errors"

var (
	// ErrInvalidNoteID 笔记 ID 格式错误
	ErrInvalidNoteID = errors.New("invalid note id")
	// ErrEmptyAttachmentKey 附件 key 为空
	ErrEmptyAttachmentKey = errors.New("attachment key is empty")
)
