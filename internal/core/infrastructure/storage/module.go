// Package storage 装配文件存储引擎使用的持久化存储与节点缓存
package storage

import (
	"context"
	"fmt"

	fmconfig "github.com/w3f-grants-archive/storage-hub/internal/config/filemanager"
	badgerconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	memoryconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/memory"
	badgerstore "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage/badger"
	memorystore "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage/memory"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义存储模块的输出结构
//
// 内存后端下两者均为 nil
type ModuleOutput struct {
	fx.Out

	KeyValueDB storageInterface.KeyValueDB `optional:"true"` // BadgerDB列式存储
	NodeCache  storageInterface.NodeCache  `optional:"true"` // 数据树节点缓存（可选）
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 按文件存储引擎的后端配置打开存储
//
// 执行流程：
//  1. 内存后端不需要持久化存储，直接返回
//  2. 打开BadgerDB列式存储
//  3. 节点缓存开启时创建BigCache缓存
//  4. 注册停止钩子，先关缓存再关数据库
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger := params.Logger.With("module", "storage")

	// 1. 后端
	fmCfg := fmconfig.New(nil)
	if opts := params.Provider.GetFileManager(); opts != nil {
		*fmCfg.GetOptions() = *opts
	}
	if !fmCfg.IsPersistent() {
		logger.Info("使用内存后端，跳过持久化存储")
		return ModuleOutput{}, nil
	}

	// 2. BadgerDB
	db, err := badgerstore.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), logger)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("打开BadgerDB存储失败: %w", err)
	}

	// 3. 节点缓存
	var cache storageInterface.NodeCache
	cacheCfg := memoryconfig.New(nil)
	if opts := params.Provider.GetNodeCache(); opts != nil {
		*cacheCfg.GetOptions() = *opts
	}
	if cacheCfg.IsEnabled() {
		store, err := memorystore.New(cacheCfg, logger)
		if err != nil {
			_ = db.Close()
			return ModuleOutput{}, fmt.Errorf("创建节点缓存失败: %w", err)
		}
		cache = store
	}

	// 4. 生命周期
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("正在关闭存储服务...")
			if cache != nil {
				if err := cache.Close(); err != nil {
					logger.Errorf("关闭节点缓存失败: %v", err)
				}
			}
			if err := db.Close(); err != nil {
				logger.Errorf("关闭BadgerDB存储失败: %v", err)
				return err
			}
			logger.Info("存储服务已安全关闭")
			return nil
		},
	})

	return ModuleOutput{KeyValueDB: db, NodeCache: cache}, nil
}
