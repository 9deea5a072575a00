// Package callbacks provides observers for the agent graph.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/xlog"

	"github.com/leaninnovationlabs/govcloud-ai-agent-mcp-client/agent"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agent.Callback = (*Noop)(nil)
	_ agent.Callback = (*Printer)(nil)
	_ agent.Callback = (*PackageLogger)(nil)
	_ agent.Callback = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agent.Callback
}

func NewFanout(callbacks ...agent.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agent.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnNodeStart(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind) {
	for _, callback := range l.callbacks {
		callback.OnNodeStart(ctx, cc, kind)
	}
}

func (l *Fanout) OnNodeEnd(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind, next agent.NodeKind, err error) {
	for _, callback := range l.callbacks {
		callback.OnNodeEnd(ctx, cc, kind, next, err)
	}
}

func (l *Fanout) OnToolCallStart(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	for _, callback := range l.callbacks {
		callback.OnToolCallStart(ctx, cc, call)
	}
}

func (l *Fanout) OnToolCallEnd(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	for _, callback := range l.callbacks {
		callback.OnToolCallEnd(ctx, cc, call)
	}
}

func (l *Fanout) OnToolCallError(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolCallError(ctx, cc, call, err)
	}
}

func (l *Fanout) OnRunEnd(ctx context.Context, cc *agent.ConversationContext, err error) {
	for _, callback := range l.callbacks {
		callback.OnRunEnd(ctx, cc, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnNodeStart(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind) {
}
func (l *Noop) OnNodeEnd(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind, next agent.NodeKind, err error) {
}
func (l *Noop) OnToolCallStart(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
}
func (l *Noop) OnToolCallEnd(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
}
func (l *Noop) OnToolCallError(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall, err error) {
}
func (l *Noop) OnRunEnd(ctx context.Context, cc *agent.ConversationContext, err error) {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnNodeStart(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Node Start: %s\n", kind)
}

func (l *Printer) OnNodeEnd(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind, next agent.NodeKind, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err != nil {
		fmt.Fprintf(l.Out, "Node Error: %s: %s\n", kind, err.Error())
		return
	}
	fmt.Fprintf(l.Out, "Node End: %s -> %s\n", kind, next)
}

func (l *Printer) OnToolCallStart(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s (%s)\n", call.ToolName, call.ID)
}

func (l *Printer) OnToolCallEnd(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s (%s)\n", call.ToolName, call.ID)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Result: %s\n", string(call.Result))
	}
}

func (l *Printer) OnToolCallError(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s (%s): %s\n", call.ToolName, call.ID, err.Error())
}

func (l *Printer) OnRunEnd(ctx context.Context, cc *agent.ConversationContext, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if err != nil {
		fmt.Fprintf(l.Out, "Run Error: %s: %s\n", cc.ConversationID, err.Error())
		return
	}
	fmt.Fprintf(l.Out, "Run End: %s\n", cc.ConversationID)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnNodeStart(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "node_start",
		"conversation", cc.ConversationID,
		"node", kind,
	)
}

func (l *PackageLogger) OnNodeEnd(ctx context.Context, cc *agent.ConversationContext, kind agent.NodeKind, next agent.NodeKind, err error) {
	if err != nil {
		l.logger.ContextKV(ctx, xlog.ERROR,
			"event", "node_error",
			"conversation", cc.ConversationID,
			"node", kind,
			"err", err.Error(),
		)
		return
	}
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "node_end",
		"conversation", cc.ConversationID,
		"node", kind,
		"next", next,
	)
}

func (l *PackageLogger) OnToolCallStart(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_call_start",
		"conversation", cc.ConversationID,
		"tool", call.ToolName,
		"call", call.ID,
	)
}

func (l *PackageLogger) OnToolCallEnd(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_call_end",
		"conversation", cc.ConversationID,
		"tool", call.ToolName,
		"call", call.ID,
	)
}

func (l *PackageLogger) OnToolCallError(ctx context.Context, cc *agent.ConversationContext, call *agent.ToolCall, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_call_error",
		"conversation", cc.ConversationID,
		"tool", call.ToolName,
		"call", call.ID,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnRunEnd(ctx context.Context, cc *agent.ConversationContext, err error) {
	if err != nil {
		l.logger.ContextKV(ctx, xlog.ERROR,
			"event", "run_error",
			"conversation", cc.ConversationID,
			"err", err.Error(),
		)
		return
	}
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_end",
		"conversation", cc.ConversationID,
		"phase", cc.Phase,
	)
}
