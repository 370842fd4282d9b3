package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"leaguebot/interfaces"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options はロガーの出力先とレベルを指定します。
type Options struct {
	File       string // 空の場合はファイルに出力しない
	Level      string // debug / info / warn / error
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger は interfaces.Logger を満たす slog のラッパーです。
type Logger struct {
	slog *slog.Logger
}

var _ interfaces.Logger = (*Logger)(nil)

// シングルトンとしてロガーを保持。Init 前は標準出力に info 以上を書き出す
var std = New(Options{})

// New は標準出力とローテーションされるログファイルの両方に JSON で書き出すロガーを作成します。
func New(opts Options) *Logger {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		// ログローテーションの設定
		logFile := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, logFile)
	}

	return &Logger{slog: slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(opts.Level),
	}))}
}

// Nop は何も出力しないロガーを返します。テストで使用します。
func Nop() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Init はパッケージレベルのロガーを設定します。
func Init(opts Options) *Logger {
	std = New(opts)
	return std
}

// With は属性を付与した子ロガーを返します。
// 例: log.With("command", "sign").Info("offer created", "offer_id", id)
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Fatal はエラーを出力した後にプログラムを終了します。
func (l *Logger) Fatal(msg string, args ...any) {
	l.slog.Error(msg, args...)
	os.Exit(1)
}

// Infoレベルのログを出力
// 例: logger.Info("Botが起動しました", "version", "1.2.3")
func Info(msg string, args ...any) {
	std.Info(msg, args...)
}

// Warnレベルのログを出力
func Warn(msg string, args ...any) {
	std.Warn(msg, args...)
}

// Errorレベルのログを出力
// 例: logger.Error("コマンドの実行に失敗", "error", err, "command", "sign")
func Error(msg string, args ...any) {
	std.Error(msg, args...)
}

// Fatalレベルのログを出力（出力後にプログラムを終了）
func Fatal(msg string, args ...any) {
	std.Fatal(msg, args...)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
