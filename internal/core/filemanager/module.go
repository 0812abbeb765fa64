// Package filemanager 装配文件存储引擎
//
// 🎯 **装配内容**
// - 按 filemanager.backend 选择内存或BadgerDB持久化后端
// - 以 manager.Manager 包装后端，对外提供并发安全的 fm.FileStorage
// - 向全局内存上报注册表登记，停止时注销
package filemanager

import (
	"context"
	"errors"
	"fmt"

	fmconfig "github.com/w3f-grants-archive/storage-hub/internal/config/filemanager"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/inmemory"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/manager"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/persistent"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/event"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	metricsutil "github.com/w3f-grants-archive/storage-hub/pkg/utils/metrics"
	"go.uber.org/fx"
)

// ErrUnknownBackend 未知的存储后端名称
var ErrUnknownBackend = errors.New("未知的文件存储后端")

// ModuleInput 文件存储引擎模块输入依赖
type ModuleInput struct {
	fx.In

	Provider   config.Provider
	Logger     log.Logger
	Lifecycle  fx.Lifecycle
	EventBus   event.EventBus     `optional:"true"`
	KeyValueDB storage.KeyValueDB `optional:"true"`
	NodeCache  storage.NodeCache  `optional:"true"`
}

// ModuleOutput 文件存储引擎模块输出
type ModuleOutput struct {
	fx.Out

	FileStorage fm.FileStorage
	Manager     *manager.Manager
}

// Module 返回文件存储引擎模块
func Module() fx.Option {
	return fx.Module("filemanager",
		fx.Provide(ProvideFileManager),
	)
}

// ProvideFileManager 创建文件注册表门面
//
// 返回：
//   - ModuleOutput: 门面同时以 fm.FileStorage 与 *manager.Manager 提供
//   - error: 后端名称未知，或持久化后端缺少 KeyValueDB
func ProvideFileManager(input ModuleInput) (ModuleOutput, error) {
	cfg := fmconfig.New(nil)
	if opts := input.Provider.GetFileManager(); opts != nil {
		*cfg.GetOptions() = *opts
	}
	backend := cfg.GetBackend()

	var (
		registry fm.FileStorage
		err      error
	)
	switch backend {
	case fmconfig.BackendMemory:
		registry = inmemory.NewFileStorage(input.Logger)
	case fmconfig.BackendBadger:
		registry, err = persistent.NewFileStorage(input.KeyValueDB, input.NodeCache, input.Logger)
		if err != nil {
			return ModuleOutput{}, fmt.Errorf("创建持久化文件注册表失败: %w", err)
		}
	default:
		return ModuleOutput{}, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	m := manager.New(registry, input.EventBus, input.Logger, backend)
	metricsutil.RegisterMemoryReporter(m)
	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			metricsutil.UnregisterMemoryReporter(m.ModuleName())
			return nil
		},
	})

	input.Logger.With("module", "filemanager").Infof("文件存储引擎已就绪: backend=%s", backend)
	return ModuleOutput{FileStorage: m, Manager: m}, nil
}
