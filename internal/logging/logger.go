package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a JSON logger writing to a rotated file under logDir.
// When console is true a plain stderr core is tee'd in, which is what
// the CLI commands use so probe noise stays out of stdout reports.
func NewLogger(logDir, level string, console bool) (*zap.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	lvl := zap.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		lvl = parsed
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "apiprobe.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), w, lvl),
	}
	if console {
		cenc := zap.NewDevelopmentEncoderConfig()
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(cenc), zapcore.AddSync(os.Stderr), lvl))
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
