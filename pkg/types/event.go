package types

// EventType 事件类型
type EventType string

const (
	// EventTypeFileComplete 文件全部分块写入且根与指纹一致
	EventTypeFileComplete EventType = "filemanager.file_complete"

	// EventTypeFileDeleted 文件及其数据树已删除
	EventTypeFileDeleted EventType = "filemanager.file_deleted"
)

// FileEvent 文件生命周期事件负载
type FileEvent struct {
	FileKey     FileKey     `json:"file_key"`
	BucketID    []byte      `json:"bucket_id"`
	Fingerprint Fingerprint `json:"fingerprint"`
	FileSize    uint64      `json:"file_size"`
}
