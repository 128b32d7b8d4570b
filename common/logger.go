package common

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// Leveled logger shared by all packages.  Call sites use the printf-style methods; the backing
// slog logger can be swapped once at startup (eg by the daemon, to attach its own handler) but
// not after concurrent use has begun.

type Logger struct {
	underlying atomic.Pointer[slog.Logger]
}

// MT: Constant after initialization; thread-safe
var Log = newLogger()

func newLogger() *Logger {
	l := new(Logger)
	l.underlying.Store(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return l
}

func (l *Logger) SetUnderlying(underlying *slog.Logger) {
	l.underlying.Store(underlying)
}

func (l *Logger) Infof(format string, args ...any) {
	l.underlying.Load().Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...any) {
	l.underlying.Load().Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.underlying.Load().Error(fmt.Sprintf(format, args...))
}
