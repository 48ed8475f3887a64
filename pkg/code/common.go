package code

import "net/http"

var (
	Success          = NewSuss(1, http.StatusOK, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate    = NewSuss(2, http.StatusCreated, lang{en: "Created", zh_cn: "创建成功"})
	SuccessUpdate    = NewSuss(3, http.StatusOK, lang{en: "Updated", zh_cn: "更新成功"})
	SuccessDelete    = NewSuss(4, http.StatusNoContent, lang{en: "Deleted", zh_cn: "删除成功"})
	SuccessAccepted  = NewSuss(5, http.StatusAccepted, lang{en: "Accepted, processing asynchronously", zh_cn: "已受理，正在异步处理"})
	SuccessNoContent = NewSuss(6, http.StatusNoContent, lang{en: "No content", zh_cn: "无内容"})

	ErrorServerInternal  = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI     = NewError(404, http.StatusNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests = NewError(429, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorInvalidParams   = NewError(400, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorDBQuery         = NewError(501, http.StatusInternalServerError, lang{en: "Database query failed", zh_cn: "数据库查询失败"})

	// Note // 笔记
	ErrorNoteNotFound  = NewError(1001, http.StatusNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorTaggerFailure = NewError(1002, http.StatusBadGateway, lang{en: "Tag generation failed", zh_cn: "标签生成失败"})

	// Attachment // 附件
	ErrorAttachmentNotFound      = NewError(2001, http.StatusNotFound, lang{en: "Attachment not found", zh_cn: "附件不存在"})
	ErrorAttachmentQuotaExceeded = NewError(2002, http.StatusForbidden, lang{en: "Attachment quota exceeded", zh_cn: "附件数量超出限制"})
	ErrorAttachmentTooLarge      = NewError(2003, http.StatusRequestEntityTooLarge, lang{en: "Attachment too large", zh_cn: "附件过大"})
	ErrorStorageFailure          = NewError(2004, http.StatusInternalServerError, lang{en: "Storage backend failure", zh_cn: "存储后端错误"})
	ErrorInvalidStorageType      = NewError(2005, http.StatusInternalServerError, lang{en: "Invalid storage type", zh_cn: "无效的存储类型"})

	// Archive // 归档
	ErrorDispatchFailure  = NewError(3001, http.StatusInternalServerError, lang{en: "Failed to dispatch archive request", zh_cn: "归档请求投递失败"})
	ErrorArchiveNotFound  = NewError(3002, http.StatusNotFound, lang{en: "Archive not found or not ready", zh_cn: "归档不存在或尚未生成"})
	ErrorInvalidQueueType = NewError(3003, http.StatusInternalServerError, lang{en: "Invalid queue type", zh_cn: "无效的队列类型"})
)
