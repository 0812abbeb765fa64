package testutil

import (
	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger 记录Debug及以上全部日志的记录器
func NewObservedLogger() (log.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logimpl.NewFromZap(zap.New(core)), logs
}

// ErrorLogs 取出Error级别的日志
func ErrorLogs(logs *observer.ObservedLogs) []observer.LoggedEntry {
	return logs.FilterLevelExact(zapcore.ErrorLevel).All()
}
