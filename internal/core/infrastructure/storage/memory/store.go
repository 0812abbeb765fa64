// Package memory 提供基于BigCache的数据树节点缓存实现
//
// 节点以哈希为键、编码为值，内容寻址保证同一键的值不变，
// 因此缓存只需在节点被物理删除时失效，不存在脏读。
package memory

import (
	"context"
	"sync"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/memory"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

// 确保Store实现了NodeCache接口
var _ storage.NodeCache = (*Store)(nil)

// Store 基于BigCache的节点缓存
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	closed bool
}

// New 创建一个新的BigCache节点缓存实例
func New(config *memoryconfig.Config, logger log.Logger) (*Store, error) {
	bigCacheConfig := bigcache.DefaultConfig(config.GetLifeWindow())
	bigCacheConfig.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	bigCacheConfig.MaxEntrySize = config.GetMaxEntrySize()
	bigCacheConfig.HardMaxCacheSize = config.GetMaxMemoryMB()
	bigCacheConfig.Shards = 256
	bigCacheConfig.CleanWindow = config.GetCleanupInterval()
	bigCacheConfig.Verbose = false

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		if logger != nil {
			logger.Errorf("创建BigCache实例失败: %v", err)
		}
		return nil, err
	}

	return &Store{
		cache:  cache,
		logger: logger,
	}, nil
}

// Get 读取缓存，未命中或已关闭时返回 (nil, false)
func (s *Store) Get(key []byte) ([]byte, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, false
	}

	value, err := s.cache.Get(string(key))
	if err != nil {
		if err != bigcache.ErrEntryNotFound && s.logger != nil {
			s.logger.Warnf("读取节点缓存失败: %v", err)
		}
		return nil, false
	}
	return value, true
}

// Set 写入缓存
func (s *Store) Set(key, value []byte) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return
	}

	if err := s.cache.Set(string(key), value); err != nil && s.logger != nil {
		s.logger.Debugf("写入节点缓存失败: %v", err)
	}
}

// Delete 移除缓存项
func (s *Store) Delete(key []byte) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return
	}

	if err := s.cache.Delete(string(key)); err != nil && err != bigcache.ErrEntryNotFound && s.logger != nil {
		s.logger.Warnf("删除节点缓存失败: %v", err)
	}
}

// Len 当前缓存条目数
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return 0
	}
	return s.cache.Len()
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("关闭节点缓存")
	}
	err := s.cache.Close()
	if err == nil {
		s.closed = true
	}
	return err
}
