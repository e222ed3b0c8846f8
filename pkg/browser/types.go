package browser

import "fmt"

// Engine identifies a browser engine family.
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// ParseEngine validates an engine family name. The error message names the
// rejected engine because it travels to the caller as an in-band tool
// error.
func ParseEngine(name string) (Engine, error) {
	switch Engine(name) {
	case EngineChromium, EngineFirefox, EngineWebKit:
		return Engine(name), nil
	default:
		return "", fmt.Errorf("unsupported browser: %s", name)
	}
}

// SessionOptions configures a per-call browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for page operations (in milliseconds)
	Timeout float64
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for session setup and content extraction.
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultMaxLength      = 10000   // content extraction cap in bytes
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// NavigateOptions configures the navigate action.
type NavigateOptions struct {
	URL string

	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string
}

// ScreenshotOptions configures the screenshot action.
type ScreenshotOptions struct {
	URL      string
	Path     string
	FullPage bool
}

// ContentOptions configures the content extraction action.
type ContentOptions struct {
	URL string

	// ContentType selects "html" or "text" extraction
	ContentType string

	// Selector optionally scopes extraction to matching elements
	Selector string

	// MaxLength limits the extracted content length (0 means default)
	MaxLength int

	// Clean strips scripts, styles, and noise from HTML content
	Clean bool
}

// ClickOptions configures the click action.
type ClickOptions struct {
	URL      string
	Selector string
}

// FillOptions configures the fill action.
type FillOptions struct {
	URL      string
	Selector string
	Value    string
}

// EvaluateOptions configures the script evaluation action.
type EvaluateOptions struct {
	URL    string
	Script string
}

// AttributeOptions configures the attribute read action.
type AttributeOptions struct {
	URL       string
	Selector  string
	Attribute string
}

// WaitOptions configures the wait action.
type WaitOptions struct {
	URL      string
	Selector string

	// State to wait for: "visible", "hidden", "attached"
	State string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// Each action returns a small typed result carrying only the fields the
// tool promises. Status is always "success"; failures are reported through
// the error return and normalized by the bridge.

// NavigateResult is the navigate action's result.
type NavigateResult struct {
	Status     string `json:"status"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	HTTPStatus *int   `json:"http_status"`
}

// ScreenshotResult is the screenshot action's result.
type ScreenshotResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// ContentResult is the content extraction action's result.
type ContentResult struct {
	Status      string `json:"status"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// ClickResult is the click action's result.
type ClickResult struct {
	Status   string `json:"status"`
	Selector string `json:"selector"`
	URL      string `json:"url"`
}

// FillResult is the fill action's result.
type FillResult struct {
	Status   string `json:"status"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

// EvaluateResult is the script evaluation action's result.
type EvaluateResult struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

// AttributeResult is the attribute read action's result.
type AttributeResult struct {
	Status    string  `json:"status"`
	Selector  string  `json:"selector"`
	Attribute string  `json:"attribute"`
	Value     *string `json:"value"`
}

// WaitResult is the wait action's result.
type WaitResult struct {
	Status   string `json:"status"`
	Selector string `json:"selector"`
	State    string `json:"state"`
}

const statusSuccess = "success"
