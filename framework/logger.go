package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf("%s%s", p.prefix, fmt.Sprintf(message, args...))
}

// LoggerWithPrefix returns a Logger that adds a prefix to every message before passing it on.
func LoggerWithPrefix(target Logger, prefix string) Logger {
	if target == nil {
		return NullLogger()
	}
	return prefixedLogger{target: target, prefix: prefix}
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory so they can be shown, or not, once the
// outcome of a test is known. It is safe for concurrent use, since event callbacks may log
// from other goroutines.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: message})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}
