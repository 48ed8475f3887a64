// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Attachment AttachmentServiceConfig // Attachment related config // 附件相关配置
	Archive    ArchiveServiceConfig    // Archive related config // 归档相关配置
}

// AttachmentServiceConfig attachment service configuration
// AttachmentServiceConfig 附件服务配置
type AttachmentServiceConfig struct {
	MaxPerNote    int   // Quota of attachments per note // 每个笔记的附件数量上限
	StrictQuota   bool  // Serialize new-key admissions per container // 按容器串行化新附件的配额检查
	MaxUploadSize int64 // Max bytes per attachment, 0 for unlimited // 单个附件最大字节数，0 表示不限制
}

// ArchiveServiceConfig archive service configuration
// ArchiveServiceConfig 归档服务配置
type ArchiveServiceConfig struct {
	QueueName      string // Queue the archive worker consumes // 归档 worker 消费的队列名称
	LocationPrefix string // Prefix of the Location header returned on 202 // 202 响应中 Location 的前缀
}
