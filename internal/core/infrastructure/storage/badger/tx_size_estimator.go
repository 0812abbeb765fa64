package badger

// TxSizeEstimator 批量写入大小估算器
//
// 🎯 **设计目的**：
// - 在打开BadgerDB事务之前估算整批大小
// - 超过上限的批量整体拒绝，接近上限时预警
//
// ⚠️ **注意事项**：
// - 估算值是近似值，实际大小可能有所不同
// - 调用方通过 Store.MaxBatchBytes 获取上限，自行把大批量拆开
type TxSizeEstimator struct {
	currentSize uint64
	maxSize     uint64
}

// NewTxSizeEstimator 创建估算器
//
// 参数：
//   - maxSize: 批量大小上限（字节），为0时使用10MB
func NewTxSizeEstimator(maxSize uint64) *TxSizeEstimator {
	if maxSize == 0 {
		maxSize = 10 << 20
	}
	return &TxSizeEstimator{maxSize: maxSize}
}

// AddWrite 记录写入操作：键长度 + 值长度 + 约20字节元数据开销
func (e *TxSizeEstimator) AddWrite(keyLen, valueLen int) {
	e.currentSize += uint64(keyLen + valueLen + 20)
}

// AddDelete 记录删除操作：墓碑标记约为键长度 + 10字节
func (e *TxSizeEstimator) AddDelete(keyLen int) {
	e.currentSize += uint64(keyLen + 10)
}

// GetCurrentSize 当前估算大小（字节）
func (e *TxSizeEstimator) GetCurrentSize() uint64 {
	return e.currentSize
}

// GetMaxSize 大小上限（字节）
func (e *TxSizeEstimator) GetMaxSize() uint64 {
	return e.maxSize
}

// IsNearLimit 是否达到上限的80%
func (e *TxSizeEstimator) IsNearLimit() bool {
	return e.currentSize >= e.maxSize*80/100
}

// IsOverLimit 是否超过上限
func (e *TxSizeEstimator) IsOverLimit() bool {
	return e.currentSize > e.maxSize
}

// GetUsagePercent 使用百分比（0-100，超限时大于100）
func (e *TxSizeEstimator) GetUsagePercent() float64 {
	return float64(e.currentSize) * 100 / float64(e.maxSize)
}

// Reset 重置估算器
func (e *TxSizeEstimator) Reset() {
	e.currentSize = 0
}
