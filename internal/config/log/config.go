package log

import (
	"strings"

	configtypes "github.com/w3f-grants-archive/storage-hub/pkg/types"
	"go.uber.org/zap/zapcore"
)

// LogOptions 日志配置选项
type LogOptions struct {
	Level     string `json:"level"`      // debug, info, warn, error
	ToConsole bool   `json:"to_console"` // 控制台输出（stderr）
	FilePath  string `json:"file_path"`  // 为空时不写文件

	// 文件轮转，仅当FilePath非空时生效
	MaxSize    int  `json:"max_size"` // MB
	MaxBackups int  `json:"max_backups"`
	MaxAge     int  `json:"max_age"` // 天
	Compress   bool `json:"compress"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 基于默认值创建日志配置，userConfig为*types.UserLogConfig时覆盖对应字段
func New(userConfig interface{}) *Config {
	options := &LogOptions{
		Level:            defaultLogLevel,
		ToConsole:        defaultToConsole,
		FilePath:         defaultFilePath,
		MaxSize:          defaultMaxSize,
		MaxBackups:       defaultMaxBackups,
		MaxAge:           defaultMaxAge,
		Compress:         defaultCompress,
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
	}

	if user, ok := userConfig.(*configtypes.UserLogConfig); ok && user != nil {
		if user.Level != nil {
			options.Level = *user.Level
		}
		if user.FilePath != nil {
			options.FilePath = *user.FilePath
			// 写文件时不再重复输出到控制台
			options.ToConsole = false
		}
	}

	return &Config{options: options}
}

// NewFromOptions 直接包装已解析的选项
func NewFromOptions(options *LogOptions) *Config {
	return &Config{options: options}
}

// GetOptions 获取完整的日志配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel 解析日志级别，无法识别时退回Info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, ok := levelByName[strings.ToLower(c.options.Level)]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// IsConsoleEnabled 是否启用控制台输出
func (c *Config) IsConsoleEnabled() bool { return c.options.ToConsole }

// GetFilePath 获取日志文件路径
func (c *Config) GetFilePath() string { return c.options.FilePath }

// IsCallerEnabled 是否记录调用位置
func (c *Config) IsCallerEnabled() bool { return c.options.EnableCaller }

// IsStacktraceEnabled 是否对Error级别附加堆栈
func (c *Config) IsStacktraceEnabled() bool { return c.options.EnableStacktrace }

// NewEncoder 创建日志编码器
//
// 文件使用JSON格式便于采集，控制台使用可读的行格式。
func (c *Config) NewEncoder(forFile bool) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if forFile {
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
