package event

import (
	"context"

	eventconfig "github.com/w3f-grants-archive/storage-hub/internal/config/event"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	eventInterface "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/event"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 创建事件总线，停止时等待异步处理器排空
func ProvideEventBus(input ModuleInput) ModuleOutput {
	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "event")
	}
	cfg := eventconfig.New(nil)
	if opts := input.Provider.GetEvent(); opts != nil {
		cfg.GetOptions().Enabled = opts.Enabled
	}
	bus := New(cfg, logger)

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.WaitAsync()
			return nil
		},
	})

	return ModuleOutput{EventBus: bus}
}
