package filemanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

func TestErrorClassifiers(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		retryable  bool
		corruption bool
		critical   bool
	}{
		{"读取失败", fmt.Errorf("%w: %w", ErrFailedToReadStorage, errors.New("io")), true, false, false},
		{"提交失败", fmt.Errorf("%w: %w", ErrFailedToPersistChanges, ErrFailedToWriteToStorage), true, false, false},
		{"分块解码失败", ErrFailedToParseChunkWithID, false, true, false},
		{"部分根损坏", ErrFailedToParsePartialRoot, false, true, false},
		{"指纹不一致", fmt.Errorf("%w: file", ErrFingerprintAndStoredFileMismatch), false, true, true},
		{"配对破坏", ErrPairingInvariantViolated, false, false, true},
		{"文件不存在", ErrFileDoesNotExist, false, false, false},
		{"批量超限", fmt.Errorf("%w: %w", ErrFailedToPersistChanges, fmt.Errorf("%w: %w", ErrFailedToWriteToStorage, storage.ErrBatchTooLarge)), false, false, false},
		{"存储桶ID无效", ErrInvalidBucketID, false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.retryable, IsRetryable(tc.err), "IsRetryable")
			assert.Equal(t, tc.corruption, IsCorruption(tc.err), "IsCorruption")
			assert.Equal(t, tc.critical, IsCritical(tc.err), "IsCritical")
		})
	}
}

func TestWriteOutcome_String(t *testing.T) {
	assert.Equal(t, "FileComplete", FileComplete.String())
	assert.Equal(t, "FileIncomplete", FileIncomplete.String())
}
