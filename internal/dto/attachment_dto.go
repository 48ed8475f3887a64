// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "time"

// AttachmentDTO attachment listing entry
// AttachmentDTO 附件列表项
type AttachmentDTO struct {
	AttachmentID     string    `json:"attachmentId"`
	ContentType      string    `json:"contentType"`
	CreatedDate      time.Time `json:"createdDate"`
	LastModifiedDate time.Time `json:"lastModifiedDate"`
	Length           int64     `json:"length"`
}

// NoteURI path parameters addressing a note
// NoteURI 笔记路径参数
type NoteURI struct {
	NoteID string `uri:"noteId" json:"noteId" binding:"required,max=64"`
}

// AttachmentURI path parameters addressing one attachment
// AttachmentURI 附件路径参数
type AttachmentURI struct {
	NoteID       string `uri:"noteId" json:"noteId" binding:"required,max=64"`
	AttachmentID string `uri:"attachmentId" json:"attachmentId" binding:"required,max=1024"`
}

// ArchiveURI path parameters addressing a finished archive
// ArchiveURI 归档路径参数
type ArchiveURI struct {
	NoteID    string `uri:"noteId" json:"noteId" binding:"required,max=64"`
	ArchiveID string `uri:"archiveId" json:"archiveId" binding:"required,max=64"`
}

// ArchiveAcceptedDTO body returned with 202 Accepted
// ArchiveAcceptedDTO 归档请求受理响应
type ArchiveAcceptedDTO struct {
	ArchiveID string `json:"archiveId"`
	Location  string `json:"location"`
}
