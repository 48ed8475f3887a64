package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldContainer 存储容器字段
	FieldContainer = "container"

	// FieldAttachmentKey 附件 key 字段
	FieldAttachmentKey = "attachmentKey"

	// FieldArchiveID 归档 ID 字段
	FieldArchiveID = "archiveId"

	// FieldQueue 队列名称字段
	FieldQueue = "queue"

	// FieldStorageType 存储类型字段
	FieldStorageType = "storageType"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldSize 大小字段
	FieldSize = "size"

	// FieldLimit 配额上限字段
	FieldLimit = "limit"

	// FieldBucket 存储桶名称字段
	FieldBucket = "bucket"

	// FieldTask 定时任务名称字段
	FieldTask = "task"
)
