// Package logging provides a small leveled logger in the teacher's idiom:
// a package-global default logger gated by an atomic verbosity knob,
// rather than a third-party logging dependency (aistore's own cmn/nlog
// takes the same approach and carries no external logging library either).
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

// Level enumerates severities, ordered least to most severe.
type Level int32

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "I"
	case LevelWarning:
		return "W"
	case LevelError:
		return "E"
	case LevelFatal:
		return "F"
	default:
		return "?"
	}
}

// Logger is a leveled logger with a verbosity gate for chatty call sites.
type Logger struct {
	out       *log.Logger
	verbosity int32 // current -V level; FastV(n) is true when n <= verbosity
	module    string
}

// New returns a Logger writing to w, tagged with module (e.g. "worker",
// "xdf/reachability") the way aistore tags log lines by smodule.
func New(w io.Writer, module string) *Logger {
	return &Logger{out: log.New(w, "", 0), module: module}
}

var def = New(os.Stderr, "xdf")

// Default returns the package-global logger, analogous to nlog's package
// funcs (nlog.Infof, etc).
func Default() *Logger { return def }

// SetVerbosity adjusts the global gate used by FastV/Infoln-style call
// sites that want to skip string formatting entirely when not verbose.
func (l *Logger) SetVerbosity(v int) { atomic.StoreInt32(&l.verbosity, int32(v)) }

// FastV reports whether verbosity level v is currently enabled, letting
// call sites skip building a log message entirely (mirrors cmn.Rom.FastV
// used in ais/prxs3.go).
func (l *Logger) FastV(v int32) bool { return atomic.LoadInt32(&l.verbosity) >= v }

func (l *Logger) line(level Level, msg string) string {
	return fmt.Sprintf("%s %s [%s] %s", level, time.Now().UTC().Format("15:04:05.000000"), l.module, msg)
}

func (l *Logger) Infof(format string, args ...any)    { l.out.Println(l.line(LevelInfo, fmt.Sprintf(format, args...))) }
func (l *Logger) Infoln(args ...any)                  { l.out.Println(l.line(LevelInfo, fmt.Sprint(args...))) }
func (l *Logger) Warningf(format string, args ...any) { l.out.Println(l.line(LevelWarning, fmt.Sprintf(format, args...))) }
func (l *Logger) Errorf(format string, args ...any)   { l.out.Println(l.line(LevelError, fmt.Sprintf(format, args...))) }
func (l *Logger) Fatalf(format string, args ...any) {
	l.out.Println(l.line(LevelFatal, fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func Infof(format string, args ...any)    { def.Infof(format, args...) }
func Infoln(args ...any)                  { def.Infoln(args...) }
func Warningf(format string, args ...any) { def.Warningf(format, args...) }
func Errorf(format string, args ...any)   { def.Errorf(format, args...) }
func Fatalf(format string, args ...any)   { def.Fatalf(format, args...) }
func FastV(v int32) bool                 { return def.FastV(v) }
func SetVerbosity(v int)                 { def.SetVerbosity(v) }
