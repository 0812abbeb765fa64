package badger

import (
	"errors"

	interfaces "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

var (
	// ErrNilConfig 配置不能为空
	ErrNilConfig = errors.New("badger 配置不能为空")

	// ErrEmptyPath 磁盘模式必须配置数据目录
	ErrEmptyPath = errors.New("badger 数据目录未配置")

	// ErrStoreClosing 存储正在关闭
	ErrStoreClosing = errors.New("badger store is closing")

	// ErrBatchTooLarge 批量超过单事务上限
	ErrBatchTooLarge = interfaces.ErrBatchTooLarge

	// ErrCorruptValue 存储值无法解压
	ErrCorruptValue = errors.New("存储值解压失败")
)
