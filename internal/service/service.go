package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/domain"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
)

// maxAttachmentKeyLen 附件 key 最大长度
const maxAttachmentKeyLen = 1024

// noteResolver checks identifier syntax first and note existence second, before any
// storage call is made.
// noteResolver 先校验 ID 格式，再校验笔记存在，之后才访问存储
type noteResolver struct {
	repo domain.NoteRepository
}

// resolve returns the parsed note id and its attachment container name.
// checks are further syntax checks; they run after the id parses and before the store lookup.
func (r noteResolver) resolve(ctx context.Context, noteID string, checks ...func() error) (uuid.UUID, string, error) {
	id, err := domain.ParseNoteID(noteID)
	if err != nil {
		return uuid.Nil, "", apperrors.New(code.ErrorInvalidParams.WithDetails("noteId: "+err.Error()), err)
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return uuid.Nil, "", err
		}
	}

	ok, err := r.repo.Exists(ctx, id)
	if err != nil {
		return uuid.Nil, "", apperrors.New(code.ErrorDBQuery, err)
	}
	if !ok {
		return uuid.Nil, "", apperrors.New(code.ErrorNoteNotFound, domain.ErrNoteNotFound)
	}
	return id, domain.ContainerNameFor(id), nil
}

// validateKey 校验附件 key
func validateKey(key string) error {
	var reason string
	switch {
	case key == "":
		reason = domain.ErrEmptyAttachmentKey.Error()
	case len(key) > maxAttachmentKeyLen:
		reason = "attachment key is too long"
	case key == "." || key == "..":
		reason = "attachment key is reserved"
	case strings.ContainsAny(key, "/\\\x00"):
		reason = "attachment key contains a path separator"
	default:
		return nil
	}
	return apperrors.New(code.ErrorInvalidParams.WithDetails("attachmentId: "+reason), domain.ErrEmptyAttachmentKey)
}

// keyCheck 延迟执行的 key 校验，供 resolve 使用
func keyCheck(key string) func() error {
	return func() error { return validateKey(key) }
}

func storageFailure(err error) error {
	return apperrors.New(code.ErrorStorageFailure, err)
}
