package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu          sync.RWMutex
	sugar       = zap.NewNop().Sugar()
	development bool
)

// Init builds the process logger. Development mode enables Debug output
// and human-readable encoding.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	dev := environment == "development"
	if dev {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return err
	}

	mu.Lock()
	sugar = l.Sugar()
	development = dev
	mu.Unlock()
	return nil
}

// Set replaces the process logger, mainly for tests.
func Set(l *zap.Logger, dev bool) {
	mu.Lock()
	sugar = l.Sugar()
	development = dev
	mu.Unlock()
}

func get() (*zap.SugaredLogger, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return sugar, development
}

func Info(format string, v ...interface{}) {
	l, _ := get()
	l.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	l, _ := get()
	l.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	l, dev := get()
	if dev {
		l.Debugf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	l, _ := get()
	l.Warnf(format, v...)
}

// With returns a structured logger carrying the given key/value pairs.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	l, _ := get()
	return l.With(keysAndValues...)
}

func Sync() {
	l, _ := get()
	_ = l.Sync()
}
