package filemanager

import (
	"errors"

	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

// 读路径错误（读写共用）
var (
	// ErrFileDoesNotExist 文件未登记
	ErrFileDoesNotExist = errors.New("文件不存在")

	// ErrFileChunkDoesNotExist 分块不存在
	ErrFileChunkDoesNotExist = errors.New("文件分块不存在")

	// ErrIncompleteFile 文件分块尚未全部写入
	ErrIncompleteFile = errors.New("文件不完整")

	// ErrFingerprintAndStoredFileMismatch 数据树根与元数据中的指纹不一致（数据损坏）
	ErrFingerprintAndStoredFileMismatch = errors.New("指纹与已存储文件不一致")

	// ErrFailedToConstructTrieIter 构建数据树遍历失败
	ErrFailedToConstructTrieIter = errors.New("构建数据树遍历器失败")

	// ErrFailedToGetFileChunk 读取分块失败
	ErrFailedToGetFileChunk = errors.New("读取文件分块失败")

	// ErrFailedToParseChunkWithID 分块叶子值解码失败（数据损坏）
	ErrFailedToParseChunkWithID = errors.New("解析带序号分块失败")

	// ErrFailedToParseFileMetadata 元数据解码失败（数据损坏）
	ErrFailedToParseFileMetadata = errors.New("解析文件元数据失败")

	// ErrFailedToParseFingerprint 指纹解码失败
	ErrFailedToParseFingerprint = errors.New("解析指纹失败")

	// ErrFailedToParsePartialRoot 部分根解码失败
	ErrFailedToParsePartialRoot = errors.New("解析部分根失败")

	// ErrFailedToHasherOutput 字节无法转换为哈希输出
	ErrFailedToHasherOutput = errors.New("转换哈希输出失败")

	// ErrFailedToGenerateCompactProof 紧凑证明生成失败
	ErrFailedToGenerateCompactProof = errors.New("生成紧凑证明失败")

	// ErrFailedToReadStorage 存储读取I/O失败
	ErrFailedToReadStorage = errors.New("读取存储失败")

	// ErrFailedToParseKey 存储中的键格式无效
	ErrFailedToParseKey = errors.New("解析键失败")
)

// 写路径错误
var (
	// ErrFileAlreadyExists 文件已登记
	ErrFileAlreadyExists = errors.New("文件已存在")

	// ErrFileChunkAlreadyExists 分块已写入，分块只允许写一次
	ErrFileChunkAlreadyExists = errors.New("文件分块已存在")

	// ErrFailedToInsertFileChunk 插入分块失败
	ErrFailedToInsertFileChunk = errors.New("插入文件分块失败")

	// ErrFailedToDeleteChunk 删除分块失败
	ErrFailedToDeleteChunk = errors.New("删除文件分块失败")

	// ErrFailedToPersistChanges 提交写缓冲失败
	ErrFailedToPersistChanges = errors.New("持久化变更失败")

	// ErrFailedToUpdatePartialRoot 更新部分根指针失败
	ErrFailedToUpdatePartialRoot = errors.New("更新部分根失败")

	// ErrFailedToWriteToStorage 存储写入I/O失败
	ErrFailedToWriteToStorage = errors.New("写入存储失败")

	// ErrFailedToGetStoredChunksCount 统计已存储分块失败
	ErrFailedToGetStoredChunksCount = errors.New("获取已存储分块数失败")

	// ErrInvalidBucketID 存储桶ID长度必须为32字节
	ErrInvalidBucketID = errors.New("存储桶ID长度无效")
)

// 内部一致性错误
var (
	// ErrPairingInvariantViolated 元数据与数据树（或部分根指针）不成对
	// 正确运行时不可能出现，发现即panic
	ErrPairingInvariantViolated = errors.New("元数据与数据树配对不变量被破坏")
)

// IsRetryable 存储I/O类错误，调用方可以重试
// 存储拒绝的超限批量不可重试，即使它被包装为写入失败
func IsRetryable(err error) bool {
	if errors.Is(err, storage.ErrBatchTooLarge) {
		return false
	}
	return errors.Is(err, ErrFailedToReadStorage) ||
		errors.Is(err, ErrFailedToWriteToStorage) ||
		errors.Is(err, ErrFailedToPersistChanges) ||
		errors.Is(err, ErrFailedToUpdatePartialRoot)
}

// IsCorruption 已存储数据解码失败或指纹不一致，重试无意义
func IsCorruption(err error) bool {
	return errors.Is(err, ErrFailedToParseChunkWithID) ||
		errors.Is(err, ErrFailedToParseFileMetadata) ||
		errors.Is(err, ErrFailedToParseFingerprint) ||
		errors.Is(err, ErrFailedToParsePartialRoot) ||
		errors.Is(err, ErrFailedToHasherOutput) ||
		errors.Is(err, ErrFailedToParseKey) ||
		errors.Is(err, ErrFingerprintAndStoredFileMismatch)
}

// IsCritical 正确运行时不应出现的状态，应以错误级别记录并上报，而不是重试
func IsCritical(err error) bool {
	return errors.Is(err, ErrFingerprintAndStoredFileMismatch) ||
		errors.Is(err, ErrPairingInvariantViolated)
}
