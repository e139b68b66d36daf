package logger

import (
	"os"

	"github.com/op/go-logging"
)

var logger *logging.Logger

func init() {
	InitLogger(logging.INFO)
}

// InitLogger 初始化日志，按级别过滤输出
func InitLogger(level logging.Level) {
	newLogger := logging.MustGetLogger("ingest-console")

	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:2006/01/02 15:04:05} %{level} - %{message}`)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(level, "")
	newLogger.SetBackend(backendLeveled)

	logger = newLogger
}

// ParseLevel 解析配置中的日志级别
func ParseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.DEBUG
	case "warn":
		return logging.WARNING
	case "error":
		return logging.ERROR
	default:
		return logging.INFO
	}
}

func Debug(args ...interface{}) {
	logger.Debug(args...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Warning(args ...interface{}) {
	logger.Warning(args...)
}

func Warningf(format string, args ...interface{}) {
	logger.Warningf(format, args...)
}

func Error(args ...interface{}) {
	logger.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
