package bridge

import (
	"context"
	"fmt"

	"github.com/entrhq/surf/pkg/browser"
	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/logging"
	"github.com/entrhq/surf/pkg/mcp"
)

// Session is the surface a tool action drives. *browser.Session implements
// it; tests substitute fakes that record opens, closes, and identities.
type Session interface {
	Navigate(browser.NavigateOptions) (*browser.NavigateResult, error)
	Screenshot(browser.ScreenshotOptions) (*browser.ScreenshotResult, error)
	Content(browser.ContentOptions) (*browser.ContentResult, error)
	Click(browser.ClickOptions) (*browser.ClickResult, error)
	Fill(browser.FillOptions) (*browser.FillResult, error)
	Evaluate(browser.EvaluateOptions) (*browser.EvaluateResult, error)
	Attribute(browser.AttributeOptions) (*browser.AttributeResult, error)
	WaitFor(browser.WaitOptions) (*browser.WaitResult, error)
	Close() error
}

// SessionBackend opens per-call sessions.
type SessionBackend interface {
	Open(engine browser.Engine, opts browser.SessionOptions) (Session, error)
}

// launcherBackend adapts the Playwright launcher to the SessionBackend
// seam.
type launcherBackend struct {
	launcher *browser.Launcher
}

func (b launcherBackend) Open(engine browser.Engine, opts browser.SessionOptions) (Session, error) {
	session, err := b.launcher.Open(engine, opts)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DirectBackend executes tools against an in-process browser. Each call
// owns a fresh session that is torn down unconditionally, success or
// failure.
type DirectBackend struct {
	backend  SessionBackend
	launcher *browser.Launcher
	viewport *browser.Viewport
	timeout  float64
	log      *logging.Logger
}

// NewDirectBackend creates the direct backend. The underlying Playwright
// driver starts lazily on the first call.
func NewDirectBackend(cfg config.BrowserConfig, log *logging.Logger) *DirectBackend {
	launcher := browser.NewLauncher()
	return &DirectBackend{
		backend:  launcherBackend{launcher: launcher},
		launcher: launcher,
		viewport: &browser.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		timeout:  cfg.TimeoutMS,
		log:      log,
	}
}

// Execute runs one invocation: parse the tool's arguments, validate the
// engine family, open a session, run the action, close the session. The
// deferred close is the resource-isolation guarantee: opens and closes pair
// exactly, including on the error path.
func (d *DirectBackend) Execute(ctx context.Context, inv *Invocation) (any, error) {
	action, err := d.plan(inv)
	if err != nil {
		return nil, err
	}

	engine, err := browser.ParseEngine(inv.Engine)
	if err != nil {
		return nil, err
	}

	session, err := d.backend.Open(engine, browser.SessionOptions{
		Headless: inv.Headless,
		Viewport: d.viewport,
		Timeout:  d.timeout,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			d.log.Warnf("call %s: session close: %v", inv.ID, closeErr)
		}
	}()

	return action(session)
}

// Close stops the Playwright driver if it was ever started.
func (d *DirectBackend) Close() error {
	if d.launcher == nil {
		return nil
	}
	return d.launcher.Close()
}

// plan decodes the invocation's arguments and returns the action to run
// against the session. Argument problems are caught here, before any
// browser launches.
func (d *DirectBackend) plan(inv *Invocation) (func(Session) (any, error), error) {
	switch inv.Tool {
	case mcp.ToolNavigate:
		args, err := parseNavigateArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Navigate(browser.NavigateOptions{URL: args.URL, WaitUntil: args.WaitUntil})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolScreenshot:
		args, err := parseScreenshotArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Screenshot(browser.ScreenshotOptions{URL: args.URL, Path: args.Path, FullPage: args.FullPage})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolGetContent:
		args, err := parseGetContentArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Content(browser.ContentOptions{
				URL:         args.URL,
				ContentType: args.ContentType,
				Selector:    args.Selector,
				MaxLength:   args.MaxLength,
				Clean:       args.Clean,
			})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolClick:
		args, err := parseClickArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Click(browser.ClickOptions{URL: args.URL, Selector: args.Selector})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolFill:
		args, err := parseFillArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Fill(browser.FillOptions{URL: args.URL, Selector: args.Selector, Value: args.Value})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolExecuteScript:
		args, err := parseExecuteScriptArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Evaluate(browser.EvaluateOptions{URL: args.URL, Script: args.Script})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolGetAttribute:
		args, err := parseGetAttributeArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.Attribute(browser.AttributeOptions{URL: args.URL, Selector: args.Selector, Attribute: args.Attribute})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	case mcp.ToolWaitFor:
		args, err := parseWaitForArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		return func(s Session) (any, error) {
			result, err := s.WaitFor(browser.WaitOptions{URL: args.URL, Selector: args.Selector, State: args.State, Timeout: args.Timeout})
			if err != nil {
				return nil, err
			}
			return result, nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", inv.Tool)
	}
}
