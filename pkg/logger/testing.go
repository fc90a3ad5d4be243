package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger возвращает логгер, пишущий в вывод теста.
func NewTestLogger(t zaptest.TestingT) *ZapLogger {
	return New(zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel)))
}

// NewNop возвращает логгер, который ничего не пишет.
func NewNop() *ZapLogger {
	return New(zap.NewNop())
}
