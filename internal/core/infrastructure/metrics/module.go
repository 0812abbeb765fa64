package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleInput 指标模块输入依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Registry  *prometheus.Registry
	Gatherer  prometheus.Gatherer
	Collector *MemoryCollector
}

// Module 返回 metrics 模块
//
// 提供：
// - *prometheus.Registry: 进程级指标注册表，已注册模块内存采集器
// - prometheus.Gatherer: 默认注册表与进程级注册表的合并视图
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 创建注册表并注册模块内存采集器
func ProvideRegistry(input ModuleInput) (ModuleOutput, error) {
	registry := prometheus.NewRegistry()
	collector := NewMemoryCollector()
	if err := registry.Register(collector); err != nil {
		return ModuleOutput{}, err
	}

	if input.Logger != nil {
		input.Logger.With("module", "metrics").Debug("模块内存采集器已注册")
	}

	return ModuleOutput{
		Registry:  registry,
		Gatherer:  prometheus.Gatherers{prometheus.DefaultGatherer, registry},
		Collector: collector,
	}, nil
}
