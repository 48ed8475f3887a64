package code

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDataDoesNotMutateCatalogue(t *testing.T) {
	c := ErrorAttachmentQuotaExceeded.WithData(map[string]int{"limit": 5})

	assert.True(t, c.HaveData())
	assert.False(t, ErrorAttachmentQuotaExceeded.HaveData())
	assert.Nil(t, ErrorAttachmentQuotaExceeded.Data())
	assert.Equal(t, http.StatusForbidden, c.StatusCode())
	assert.Equal(t, ErrorAttachmentQuotaExceeded.Code(), c.Code())
}

func TestWithDetailsKeepsData(t *testing.T) {
	c := ErrorInvalidParams.WithData("x").WithDetails("a", "b")

	assert.Equal(t, "x", c.Data())
	assert.Equal(t, []string{"a", "b"}, c.Details())
	assert.Empty(t, ErrorInvalidParams.Details())
}

func TestIs(t *testing.T) {
	assert.True(t, ErrorNoteNotFound.Is(ErrorNoteNotFound.WithDetails("n")))
	assert.False(t, ErrorNoteNotFound.Is(ErrorAttachmentNotFound))
}

func TestSetGlobalDefaultLang(t *testing.T) {
	defer func() { _ = SetGlobalDefaultLang("en") }()

	assert.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "笔记不存在", ErrorNoteNotFound.Msg())

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, "en", GetGlobalDefaultLang())
	assert.Equal(t, "Note not found", ErrorNoteNotFound.Msg())
}
