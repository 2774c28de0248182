package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var globalLogger *slog.Logger

// levels はコマンドラインで指定できるログレベル
var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel ログレベル名をslog.Levelに変換する（大文字小文字は区別しない）
func ParseLevel(level string) (slog.Level, error) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
	return l, nil
}

// InitLogger ログレベルに応じてslogを初期化する
// 標準出力は生成コードに使うため、ログは標準エラー出力に書く
func InitLogger(level string) error {
	return InitLoggerWithWriter(level, os.Stderr)
}

// InitLoggerWithWriter 出力先を指定してslogを初期化する
func InitLoggerWithWriter(level string, w io.Writer) error {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	globalLogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slogLevel,
	}))
	slog.SetDefault(globalLogger)

	return nil
}

// GetLogger グローバルロガーを取得
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// Component component属性付きのロガーを返す
func Component(name string) *slog.Logger {
	return GetLogger().With("component", name)
}
