package logger

import (
	"log"

	"go.uber.org/zap"
)

// Log is the application-wide structured logger. It is a no-op until Init runs.
var Log = zap.NewNop().Sugar()

// Init builds the global logger for the given environment.
func Init(env string) {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Printf("Failed to initialize zap logger, falling back to no-op: %v", err)
		return
	}
	Log = l.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
