package logger

import (
	"os"

	"github.com/juju/errors"
	"github.com/ngaut/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pingcap/tipocket-sqllab/pkg/config"
)

// InitGlobalLogger initializes zap global logger. Output goes to stderr and,
// when cfg.File is set, to a rotated log file.
func InitGlobalLogger(cfg config.Log) error {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return errors.Annotatef(err, "log level %q", cfg.Level)
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}
	if cfg.File != "" {
		cores = append(cores, zapcore.NewCore(encoder, getLogWriter(cfg), level))
	}
	logger := zap.New(zapcore.NewTee(cores...))
	zap.ReplaceGlobals(logger)

	log.SetLevelByString(cfg.Level)
	return nil
}

func getLogWriter(cfg config.Log) zapcore.WriteSyncer {
	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return zapcore.AddSync(lumberJackLogger)
}
