package api_router

import (
	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	pkgapp "github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoteHandler 笔记 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

// Create 创建笔记
// @Summary 创建笔记
// @Description 未提供 tags 且配置了标签服务时自动生成标签
// @Tags 笔记
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "笔记内容"
// @Success 201 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	if !h.bind(c, "NoteHandler.Create", params) {
		return
	}

	note, err := h.App.NoteService.Create(c.Request.Context(), params)
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}
	c.Header("Location", "/notes/"+note.ID)
	pkgapp.NewResponse(c).ToResponse(code.SuccessCreate.WithData(note))
}

// Get 获取笔记详情
// @Summary 获取笔记
// @Tags 笔记
// @Produce json
// @Param noteId path string true "笔记 ID"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /notes/{noteId} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	params := &dto.NoteURI{}
	if !h.bindUri(c, "NoteHandler.Get", params) {
		return
	}

	note, err := h.App.NoteService.Get(c.Request.Context(), params.NoteID)
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Update 更新笔记
// @Summary 更新笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param noteId path string true "笔记 ID"
// @Param params body dto.NoteUpdateRequest true "笔记内容"
// @Success 200 {object} pkgapp.Res{data=dto.NoteDTO} "成功"
// @Router /notes/{noteId} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	uri := &dto.NoteURI{}
	if !h.bindUri(c, "NoteHandler.Update", uri) {
		return
	}
	params := &dto.NoteUpdateRequest{}
	if !h.bind(c, "NoteHandler.Update", params) {
		return
	}

	note, err := h.App.NoteService.Update(c.Request.Context(), uri.NoteID, params)
	if err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessUpdate.WithData(note))
}

// Delete 删除笔记及其附件和归档
// @Summary 删除笔记
// @Tags 笔记
// @Param noteId path string true "笔记 ID"
// @Success 204 "已删除"
// @Router /notes/{noteId} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	params := &dto.NoteURI{}
	if !h.bindUri(c, "NoteHandler.Delete", params) {
		return
	}

	if err := h.App.NoteService.Delete(c.Request.Context(), params.NoteID); err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.SuccessDelete)
}

// List 分页获取笔记列表
// @Summary 笔记列表
// @Tags 笔记
// @Produce json
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteDTO}} "成功"
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSizeWithConfig(c, h.App.PaginationConfig())

	list, total, err := h.App.NoteService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponsePage(code.Success, list, pkgapp.Pager{Page: page, PageSize: pageSize, TotalRows: int(total)})
}
