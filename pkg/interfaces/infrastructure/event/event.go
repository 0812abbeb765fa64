// Package event 提供事件总线接口定义
package event

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// EventType 事件类型
type EventType = types.EventType

// EventBus 进程内发布订阅总线
type EventBus interface {
	// Subscribe 同步订阅
	Subscribe(eventType EventType, handler interface{}) error

	// SubscribeAsync 异步订阅，transactional为true时同一处理器串行执行
	SubscribeAsync(eventType EventType, handler interface{}, transactional bool) error

	// Publish 发布事件
	Publish(eventType EventType, args ...interface{})

	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler interface{}) error

	// WaitAsync 等待所有异步处理器执行完成
	WaitAsync()

	// HasCallback 是否存在订阅者
	HasCallback(eventType EventType) bool
}
