package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Launcher opens per-call browser sessions. The Playwright driver process
// is started lazily on the first Open and reused across calls; the browser
// itself is launched fresh for every session so no state survives a call.
type Launcher struct {
	mu         sync.Mutex
	playwright *playwright.Playwright
}

// NewLauncher creates a launcher. No driver is started until the first
// session is opened, so a missing Playwright installation surfaces as that
// call's in-band error rather than a startup failure.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// driver returns the running Playwright instance, starting it on first use.
func (l *Launcher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.playwright != nil {
		return l.playwright, nil
	}

	// Driver output is discarded so it cannot reach the protocol stream.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	l.playwright = pw
	return pw, nil
}

// Open launches a fresh browser of the requested engine family and wraps
// it in a Session with one isolated context and one page. The caller owns
// the session and must close it.
func (l *Launcher) Open(engine Engine, opts SessionOptions) (*Session, error) {
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}

	var browserType playwright.BrowserType
	switch engine {
	case EngineChromium:
		browserType = pw.Chromium
	case EngineFirefox:
		browserType = pw.Firefox
	case EngineWebKit:
		browserType = pw.WebKit
	default:
		return nil, fmt.Errorf("unsupported browser: %s", engine)
	}

	// Set defaults
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	}
	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	context, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.Timeout)

	return &Session{
		Engine:    engine,
		Browser:   browser,
		Context:   context,
		Page:      page,
		Headless:  opts.Headless,
		StartedAt: time.Now(),
	}, nil
}

// Close stops the Playwright driver if it was ever started.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.playwright == nil {
		return nil
	}
	pw := l.playwright
	l.playwright = nil

	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
