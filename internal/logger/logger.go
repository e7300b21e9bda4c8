package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// FromCtx and L hand out the logger itself, so call sites are reported
// as they are.
var buildOptions = []zap.Option{zap.AddCaller()}

// Init builds the global logger: JSON in production, colored console
// otherwise. A non-empty level ("debug", "warn", ...) overrides the
// environment's default; an unknown one is reported and ignored.
func Init(env, level string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var badLevel error
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			badLevel = err
		} else {
			cfg.Level = lvl
		}
	}

	build(cfg)
	if badLevel != nil {
		log.Warn("ignoring LOG_LEVEL", zap.Error(badLevel))
	}
}

// InitCLI logs to stderr so command output on stdout stays clean. Only
// warnings and errors are shown unless verbose is set.
func InitCLI(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	build(cfg)
}

func build(cfg zap.Config) {
	var err error
	log, err = cfg.Build(buildOptions...)
	if err != nil {
		panic(err)
	}
}

// Use replaces the global logger, e.g. with an observer in tests.
func Use(l *zap.Logger) {
	log = l
}

// L returns the global logger.
func L() *zap.Logger {
	if log == nil {
		Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	}
	return log
}

// Sync flushes logs.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
