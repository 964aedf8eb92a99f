/*
Package custody defines the common types shared by the ledger runtime and the
programs it executes: account identities, account views, instructions,
program derived addresses and rent.

We pass context.Context between the runtime and programs. To do so, custody
defines some common keys to store info. There should exist two functions for
every XYZ of type T that we want to support in Context:

  WithXYZ(Context, T) Context
  XYZ(Context) T

Programs must not keep anything from the context once Process returns.
*/
package custody

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int // local to the custody package

const (
	contextKeyLogger contextKey = iota
	contextKeyProgramLog
)

// DefaultLogger is used for all context that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like this,
// after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := Logger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// Logger returns the currently set logger, or DefaultLogger if none was set.
func Logger(ctx context.Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}

// ProgramLog collects the messages programs emit during a transaction so they
// can be returned with the receipt.
type ProgramLog struct {
	mu    sync.Mutex
	lines []string
}

// Lines returns a copy of all collected messages.
func (p *ProgramLog) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

func (p *ProgramLog) add(line string) {
	p.mu.Lock()
	p.lines = append(p.lines, line)
	p.mu.Unlock()
}

// WithProgramLog attaches a collector for program messages.
func WithProgramLog(ctx context.Context, pl *ProgramLog) context.Context {
	return context.WithValue(ctx, contextKeyProgramLog, pl)
}

// Msg emits a program message. It goes to the context logger at info level
// and, when a collector is attached, into the transaction receipt. keyvals
// are rendered as key=value pairs.
func Msg(ctx context.Context, msg string, keyvals ...interface{}) {
	Logger(ctx).Info(msg, keyvals...)

	pl, ok := ctx.Value(contextKeyProgramLog).(*ProgramLog)
	if !ok {
		return
	}
	var b strings.Builder
	b.WriteString("Program log: ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	pl.add(b.String())
}
