// Package bridge turns tool invocations into concrete browser actions.
//
// Two interchangeable backends exist: the direct backend drives Playwright
// in-process with one throwaway session per call, and the CLI backend
// delegates a subset of tools to an external driver binary. Every failure a
// backend can produce — engine launch, unsupported engine, navigation,
// missing selector, script exception, subprocess exit — is normalized at
// this boundary into an in-band error result; nothing propagates up to
// crash the dispatch loop.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/logging"
	"github.com/entrhq/surf/pkg/mcp"
)

// Mode selects the execution backend for an invocation.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeCLI    Mode = "cli"
)

// Invocation is the per-call context: constructed fresh for each
// tools/call, garbage once the call's response is produced.
type Invocation struct {
	ID       uuid.UUID
	Tool     mcp.ToolName
	Args     json.RawMessage
	Mode     Mode
	Engine   string
	Headless bool
}

// ErrorResult is the normalized in-band failure shape.
type ErrorResult struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func newErrorResult(err error) ErrorResult {
	return ErrorResult{Status: "error", Error: err.Error()}
}

// backend runs one invocation. A returned error is a tool-level failure
// that the Bridge folds into an ErrorResult.
type backend interface {
	Execute(ctx context.Context, inv *Invocation) (any, error)
}

// Bridge implements mcp.Executor over the two backends.
type Bridge struct {
	mode            Mode
	direct          backend
	cli             backend
	defaultEngine   string
	defaultHeadless bool
	log             *logging.Logger
}

// New builds a bridge from configuration. Both backends are constructed;
// the direct backend starts no browser driver until its first call, and the
// CLI backend reports a missing driver path as an in-band error.
func New(cfg *config.Config, log *logging.Logger) *Bridge {
	return &Bridge{
		mode:            Mode(cfg.Bridge.Mode),
		direct:          NewDirectBackend(cfg.Browser, log),
		cli:             NewCLIBackend(cfg.Bridge, log),
		defaultEngine:   cfg.Browser.Engine,
		defaultHeadless: cfg.Browser.Headless,
		log:             log,
	}
}

// Execute runs one tool call on the configured backend.
func (b *Bridge) Execute(ctx context.Context, tool mcp.ToolName, args json.RawMessage) (any, bool) {
	return b.ExecuteMode(ctx, tool, args, b.mode)
}

// ExecuteMode runs one tool call on an explicitly chosen backend. Used by
// the one-shot exec entry point, which may override the configured mode.
func (b *Bridge) ExecuteMode(ctx context.Context, tool mcp.ToolName, args json.RawMessage, mode Mode) (result any, isError bool) {
	inv := b.newInvocation(tool, args, mode)

	// A panicking handler must not take the dispatcher down with it.
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("call %s panicked: %v", inv.ID, r)
			result = ErrorResult{Status: "error", Error: fmt.Sprintf("internal error: %v", r)}
			isError = true
		}
	}()

	b.log.Infof("call %s: tool=%s mode=%s engine=%s headless=%t",
		inv.ID, inv.Tool, inv.Mode, inv.Engine, inv.Headless)

	var res any
	var err error
	switch mode {
	case ModeCLI:
		res, err = b.cli.Execute(ctx, inv)
	default:
		res, err = b.direct.Execute(ctx, inv)
	}

	if err != nil {
		b.log.Warnf("call %s failed: %v", inv.ID, err)
		return newErrorResult(err), true
	}
	return res, resultReportsError(res)
}

// Close releases backend resources (the Playwright driver, if started).
func (b *Bridge) Close() error {
	if closer, ok := b.direct.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// newInvocation resolves the per-call engine and headless flag from the
// arguments, falling back to the configured defaults.
func (b *Bridge) newInvocation(tool mcp.ToolName, args json.RawMessage, mode Mode) *Invocation {
	var base baseArgs
	if len(args) > 0 {
		// Undecodable arguments surface later as the tool's own error.
		_ = json.Unmarshal(args, &base)
	}

	engine := b.defaultEngine
	if base.Browser != "" {
		engine = base.Browser
	}
	headless := b.defaultHeadless
	if base.Headless != nil {
		headless = *base.Headless
	}

	return &Invocation{
		ID:       uuid.New(),
		Tool:     tool,
		Args:     args,
		Mode:     mode,
		Engine:   engine,
		Headless: headless,
	}
}

// resultReportsError detects error-shaped results that arrived without a Go
// error, such as a CLI driver printing {"status":"error"} and exiting zero.
func resultReportsError(res any) bool {
	switch v := res.(type) {
	case ErrorResult:
		return true
	case map[string]any:
		status, _ := v["status"].(string)
		return status == "error"
	default:
		return false
	}
}
