// Package logger собирает zap-логгер для клиента и сервера.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options настройки логгера.
type Options struct {
	// Format "json" включает production-энкодер, иначе консольный development.
	Format string
	// File — путь к файлу логов; пустая строка отключает запись в файл.
	File string
	// Quiet оставляет в консоли только предупреждения и ошибки (для CLI-команд).
	Quiet bool
}

// New создаёт SugaredLogger. Возвращаемую функцию нужно вызвать перед выходом, чтобы сбросить буферы.
func New(opts Options) (*zap.SugaredLogger, func()) {
	var encCfg zapcore.EncoderConfig
	var consoleEnc zapcore.Encoder
	if opts.Format == "json" {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		consoleEnc = zapcore.NewConsoleEncoder(encCfg)
	}

	consoleLevel := zapcore.DebugLevel
	if opts.Quiet {
		consoleLevel = zapcore.WarnLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), consoleLevel),
	}

	var rotator *lumberjack.Logger
	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(rotator), zapcore.InfoLevel))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	sugar := l.Sugar()

	return sugar, func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
}
