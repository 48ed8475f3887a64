package domain

import (
	"strings"

	"github.com/google/uuid"
)

// archiveContainerSuffix 归档容器后缀
const archiveContainerSuffix = "-zip"

// ContainerNameFor maps a note id to its storage container name: the lowercase
// canonical form, 36 characters of [0-9a-f-].
// ContainerNameFor 将笔记 ID 映射为存储容器名（小写规范形式，36 个字符）
func ContainerNameFor(noteID uuid.UUID) string {
	// uuid.String 已是小写
	return noteID.String()
}

// ArchiveContainerFor is where the archive worker writes finished archives for a note.
// It is separate from the attachment container so archives never count toward the quota.
// ArchiveContainerFor 归档 worker 写入归档文件的容器，与附件容器分离，不占用附件配额
func ArchiveContainerFor(noteID uuid.UUID) string {
	return ContainerNameFor(noteID) + archiveContainerSuffix
}

// ParseNoteID validates and parses the textual note id. Surrounding whitespace and
// case are normalized; braces and urn prefixes are rejected.
// ParseNoteID 校验并解析笔记 ID，只接受 36 位标准格式
func ParseNoteID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return uuid.Nil, ErrInvalidNoteID
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidNoteID
	}
	return id, nil
}
