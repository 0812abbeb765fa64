package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxSizeEstimator_BasicOperations(t *testing.T) {
	est := NewTxSizeEstimator(1000)
	assert.Equal(t, uint64(0), est.GetCurrentSize(), "初始大小应该为0")

	est.AddWrite(10, 100)
	assert.Equal(t, uint64(130), est.GetCurrentSize(), "10 + 100 + 20 开销")

	est.AddDelete(50)
	assert.Equal(t, uint64(190), est.GetCurrentSize(), "再加 50 + 10 开销")

	est.Reset()
	assert.Equal(t, uint64(0), est.GetCurrentSize(), "重置后大小应该为0")
}

func TestTxSizeEstimator_Limits(t *testing.T) {
	est := NewTxSizeEstimator(1000)

	est.AddWrite(10, 100)
	assert.False(t, est.IsNearLimit())
	assert.False(t, est.IsOverLimit())

	est.AddWrite(100, 700)
	assert.True(t, est.IsNearLimit(), "950字节超过80%阈值")
	assert.False(t, est.IsOverLimit())
	assert.InDelta(t, 95.0, est.GetUsagePercent(), 0.001)

	est.AddDelete(41)
	assert.True(t, est.IsOverLimit(), "1000字节上限被超过")
}

func TestTxSizeEstimator_DefaultMax(t *testing.T) {
	est := NewTxSizeEstimator(0)
	assert.Equal(t, uint64(10<<20), est.GetMaxSize())
}
