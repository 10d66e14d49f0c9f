package logging

import (
	log "log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

var levels = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Setup installs a colored handler on stdout as the default logger.
// Unknown levels fall back to info.
func Setup(level string) {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		lvl = log.LevelInfo
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05",
	})))
}
