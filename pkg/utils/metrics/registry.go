// Package metrics 提供进程全局的内存上报器注册表
//
// 📋 **内存上报工具层**
//
// 各模块在 fx module.go 中实例化主要服务后调用 RegisterMemoryReporter，
// 基础设施层的采集器通过 CollectAllModuleStats 汇总各模块上报的逻辑内存状态。
//
// 🎯 **约束**：
// - 注册表是单机进程全局的，使用读写锁保护
// - 单个模块上报时panic不影响其他模块
package metrics

import (
	"sync"

	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/metrics"
)

var (
	mu        sync.RWMutex
	reporters []metrics.MemoryReporter
)

// RegisterMemoryReporter 注册一个内存上报器，r 为 nil 时忽略
func RegisterMemoryReporter(r metrics.MemoryReporter) {
	if r == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	reporters = append(reporters, r)
}

// UnregisterMemoryReporter 按模块名移除上报器
func UnregisterMemoryReporter(module string) {
	mu.Lock()
	defer mu.Unlock()

	kept := reporters[:0]
	for _, r := range reporters {
		if r.ModuleName() != module {
			kept = append(kept, r)
		}
	}
	reporters = kept
}

// ForEachReporter 遍历所有已注册的上报器
func ForEachReporter(fn func(metrics.MemoryReporter)) {
	if fn == nil {
		return
	}

	mu.RLock()
	defer mu.RUnlock()

	for _, r := range reporters {
		fn(r)
	}
}

// CollectAllModuleStats 按注册顺序收集各模块的内存统计
// 上报时panic的模块被跳过
func CollectAllModuleStats() []metrics.ModuleMemoryStats {
	mu.RLock()
	defer mu.RUnlock()

	stats := make([]metrics.ModuleMemoryStats, 0, len(reporters))
	for _, r := range reporters {
		func() {
			defer func() {
				_ = recover()
			}()
			stats = append(stats, r.CollectMemoryStats())
		}()
	}
	return stats
}

// GetRegisteredReportersCount 已注册的上报器数量
func GetRegisteredReportersCount() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(reporters)
}

// ClearAllMemoryReporters 清空注册表（主要用于测试）
func ClearAllMemoryReporters() {
	mu.Lock()
	defer mu.Unlock()
	reporters = nil
}
