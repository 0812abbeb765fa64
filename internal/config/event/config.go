package event

import (
	configtypes "github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// EventOptions 事件系统配置选项
type EventOptions struct {
	Enabled bool `json:"enabled"` // 是否启用事件系统
}

// Config 事件系统配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件系统配置实现
func New(userConfig interface{}) *Config {
	options := &EventOptions{
		Enabled: defaultEnabled,
	}
	if eventConfig, ok := userConfig.(*configtypes.UserEventConfig); ok && eventConfig != nil {
		if eventConfig.Enabled != nil {
			options.Enabled = *eventConfig.Enabled
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整的事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}
