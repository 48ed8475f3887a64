package api_router

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	pkgapp "github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"
	"github.com/haierkeys/note-attachment-service/pkg/storage/object"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttachmentFormField 上传附件使用的 multipart 字段名
const AttachmentFormField = "file"

// multipartOverhead 请求体上限在附件上限之外为 multipart 边界与头部预留的空间
const multipartOverhead = 64 << 10

// AttachmentHandler 附件 API 路由处理器
type AttachmentHandler struct {
	*Handler
}

// NewAttachmentHandler 创建 AttachmentHandler 实例
func NewAttachmentHandler(a *app.App) *AttachmentHandler {
	return &AttachmentHandler{Handler: NewHandler(a)}
}

// Put 上传或覆盖附件
// @Summary 上传附件
// @Description 新建返回 201 与 Location，覆盖返回 204；超出配额返回 403，data.limit 为上限
// @Tags 附件
// @Accept multipart/form-data
// @Produce json
// @Param noteId path string true "笔记 ID"
// @Param attachmentId path string true "附件 ID"
// @Param file formData file true "附件内容"
// @Success 201 {object} pkgapp.Res "新建"
// @Success 204 "覆盖"
// @Router /notes/{noteId}/attachments/{attachmentId} [put]
func (h *AttachmentHandler) Put(c *gin.Context) {
	params := &dto.AttachmentURI{}
	if !h.bindUri(c, "AttachmentHandler.Put", params) {
		return
	}

	// 在解析 multipart 之前限制请求体，超大上传不会先落盘
	maxSize := h.App.MaxUploadSize()
	if maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)
	}

	fh, err := c.FormFile(AttachmentFormField)
	if err != nil {
		if isBodyTooLarge(err) {
			h.fail(c, "AttachmentHandler.Put", apperrors.New(code.ErrorAttachmentTooLarge.WithData(map[string]int64{"maxSize": maxSize}), err))
			return
		}
		h.App.Logger().Warn("AttachmentHandler.Put FormFile err", zap.Error(err))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails("multipart field \"" + AttachmentFormField + "\" is required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		h.fail(c, "AttachmentHandler.Put", err)
		return
	}
	defer file.Close()

	contentType := object.DefaultContentType(fh.Header.Get("Content-Type"))

	res, err := h.App.AttachmentService.Put(c.Request.Context(), params.NoteID, params.AttachmentID, file, fh.Size, contentType)
	if err != nil {
		h.fail(c, "AttachmentHandler.Put", err)
		return
	}

	response := pkgapp.NewResponse(c)
	if !res.Created {
		response.ToResponse(code.SuccessNoContent)
		return
	}
	c.Header("Location", res.Location)
	response.ToResponse(code.SuccessCreate)
}

// Get 下载附件
// @Summary 下载附件
// @Tags 附件
// @Produce octet-stream
// @Param noteId path string true "笔记 ID"
// @Param attachmentId path string true "附件 ID"
// @Success 200 {file} binary "附件内容"
// @Router /notes/{noteId}/attachments/{attachmentId} [get]
func (h *AttachmentHandler) Get(c *gin.Context) {
	params := &dto.AttachmentURI{}
	if !h.bindUri(c, "AttachmentHandler.Get", params) {
		return
	}

	content, err := h.App.AttachmentService.Get(c.Request.Context(), params.NoteID, params.AttachmentID)
	if err != nil {
		h.fail(c, "AttachmentHandler.Get", err)
		return
	}
	defer content.Body.Close()

	extra := map[string]string{}
	if !content.LastModified.IsZero() {
		extra["Last-Modified"] = content.LastModified.UTC().Format(http.TimeFormat)
	}
	c.Set("status_code", http.StatusOK)
	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Body, extra)
}

// Delete 删除附件，附件不存在时同样返回 204
// @Summary 删除附件
// @Tags 附件
// @Param noteId path string true "笔记 ID"
// @Param attachmentId path string true "附件 ID"
// @Success 204 "已删除"
// @Router /notes/{noteId}/attachments/{attachmentId} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	params := &dto.AttachmentURI{}
	if !h.bindUri(c, "AttachmentHandler.Delete", params) {
		return
	}

	alreadyAbsent, err := h.App.AttachmentService.Delete(c.Request.Context(), params.NoteID, params.AttachmentID)
	if err != nil {
		h.fail(c, "AttachmentHandler.Delete", err)
		return
	}
	c.Header("X-Already-Absent", strconv.FormatBool(alreadyAbsent))
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// List 列出笔记的全部附件
// @Summary 附件列表
// @Tags 附件
// @Produce json
// @Param noteId path string true "笔记 ID"
// @Success 200 {array} dto.AttachmentDTO
// @Router /notes/{noteId}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	params := &dto.NoteURI{}
	if !h.bindUri(c, "AttachmentHandler.List", params) {
		return
	}

	list, err := h.App.AttachmentService.List(c.Request.Context(), params.NoteID)
	if err != nil {
		h.fail(c, "AttachmentHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToRaw(http.StatusOK, list)
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
