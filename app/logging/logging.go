// Package logging configures process-wide log output and rotation
package logging

import (
	"io"
	"log"
	"os"

	"github.com/storelinehq/storeline-admin/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup points the standard logger at the configured sink. File output
// rotates via lumberjack so long-running deployments do not fill the
// disk. Returns a closer for the file sink, a no-op for stdout.
func Setup(cfg config.LoggingConfig) io.Closer {
	var fileSink *lumberjack.Logger

	switch cfg.Output {
	case "file":
		fileSink = newFileSink(cfg)
		log.SetOutput(fileSink)
	case "both":
		fileSink = newFileSink(cfg)
		log.SetOutput(io.MultiWriter(os.Stdout, fileSink))
	default:
		log.SetOutput(os.Stdout)
	}

	if cfg.EnableCaller {
		log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags | log.LUTC)
	}

	if fileSink == nil {
		return io.NopCloser(nil)
	}
	return fileSink
}

func newFileSink(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}
