package domain

import "time"

// Attachment is one object stored in a note's container.
// Attachment 笔记容器中的一个附件对象
type Attachment struct {
	Key          string
	ContentType  string
	CreatedAt    time.Time
	LastModified time.Time
	Size         int64
}

// ArchiveJob is the queue payload handed to the archive worker.
// ArchiveJob 投递给归档 worker 的队列消息
type ArchiveJob struct {
	NoteID    string `json:"noteId"`
	ArchiveID string `json:"archiveId"`
}

// ArchiveSuffix 归档 ID 后缀，表示归档类型
const ArchiveSuffix = ".zip"
