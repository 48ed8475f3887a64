package api_router

import (
	"net/http"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	pkgapp "github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ArchiveHandler 附件归档 API 路由处理器
type ArchiveHandler struct {
	*Handler
}

// NewArchiveHandler 创建 ArchiveHandler 实例
func NewArchiveHandler(a *app.App) *ArchiveHandler {
	return &ArchiveHandler{Handler: NewHandler(a)}
}

// Request 请求生成附件归档
// @Summary 请求附件归档
// @Description 投递归档任务并返回 202 与归档的 Location；没有附件时返回 204
// @Tags 归档
// @Produce json
// @Param noteId path string true "笔记 ID"
// @Success 202 {object} pkgapp.Res{data=dto.ArchiveAcceptedDTO} "已受理"
// @Success 204 "没有附件"
// @Router /notes/{noteId}/attachmentzipfiles [post]
func (h *ArchiveHandler) Request(c *gin.Context) {
	params := &dto.NoteURI{}
	if !h.bindUri(c, "ArchiveHandler.Request", params) {
		return
	}

	res, err := h.App.ArchiveService.RequestArchive(c.Request.Context(), params.NoteID)
	if err != nil {
		h.fail(c, "ArchiveHandler.Request", err)
		return
	}

	response := pkgapp.NewResponse(c)
	if res.NoContent {
		response.ToResponse(code.SuccessNoContent)
		return
	}
	c.Header("Location", res.Location)
	response.ToResponse(code.SuccessAccepted.WithData(&dto.ArchiveAcceptedDTO{
		ArchiveID: res.ArchiveID,
		Location:  res.Location,
	}))
}

// Get 下载已生成的归档
// @Summary 下载归档
// @Tags 归档
// @Produce application/zip
// @Param noteId path string true "笔记 ID"
// @Param archiveId path string true "归档 ID"
// @Success 200 {file} binary "归档内容"
// @Router /notes/{noteId}/attachmentzipfiles/{archiveId} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	params := &dto.ArchiveURI{}
	if !h.bindUri(c, "ArchiveHandler.Get", params) {
		return
	}

	content, err := h.App.ArchiveService.GetArchive(c.Request.Context(), params.NoteID, params.ArchiveID)
	if err != nil {
		h.fail(c, "ArchiveHandler.Get", err)
		return
	}
	defer content.Body.Close()

	c.Set("status_code", http.StatusOK)
	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + params.ArchiveID + `"`,
	})
}
