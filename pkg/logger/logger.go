package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Get returns the process-wide logger. Development encoding for the CLI,
// production JSON when BOUTIK_ENV=production (the serve deployment).
func Get() *zap.Logger {
	once.Do(func() {
		var cfg zap.Config
		if os.Getenv("BOUTIK_ENV") == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.OutputPaths = []string{"stderr"}

		logger, err := cfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
	})
	return instance
}

// Named returns a child logger for one component.
func Named(name string) *zap.Logger {
	return Get().Named(name)
}
