package browser

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is the per-call bundle of browser, isolated context, and page.
// It is exclusively owned by the one in-flight tool call: created right
// before the handler runs and closed right after, never reused.
type Session struct {
	Engine    Engine
	Browser   playwright.Browser
	Context   playwright.BrowserContext
	Page      playwright.Page
	Headless  bool
	StartedAt time.Time
}

// Close tears down page, context, and browser in order. Errors are
// collected but teardown never stops early: a failed page close must not
// leak the browser process.
func (s *Session) Close() error {
	var errs []error
	if err := s.Page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Context.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Browser.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing session: %v", errs)
	}
	return nil
}

// goTo navigates the session's page. Every action performs exactly one
// navigation followed by one primitive operation.
func (s *Session) goTo(url, waitUntil string) (playwright.Response, error) {
	gotoOpts := playwright.PageGotoOptions{}
	if waitUntil != "" {
		state := playwright.WaitUntilState(waitUntil)
		gotoOpts.WaitUntil = &state
	}

	resp, err := s.Page.Goto(url, gotoOpts)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	return resp, nil
}

// Navigate loads a URL and returns page metadata.
func (s *Session) Navigate(opts NavigateOptions) (*NavigateResult, error) {
	waitUntil := opts.WaitUntil
	if waitUntil == "" {
		waitUntil = "load"
	}
	switch waitUntil {
	case "load", "domcontentloaded", "networkidle":
	default:
		return nil, fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", waitUntil)
	}

	resp, err := s.goTo(opts.URL, waitUntil)
	if err != nil {
		return nil, err
	}

	title, err := s.Page.Title()
	if err != nil {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}

	var httpStatus *int
	if resp != nil {
		status := resp.Status()
		httpStatus = &status
	}

	return &NavigateResult{
		Status:     statusSuccess,
		URL:        s.Page.URL(),
		Title:      title,
		HTTPStatus: httpStatus,
	}, nil
}

// Screenshot captures the page to a file and returns the absolute path.
func (s *Session) Screenshot(opts ScreenshotOptions) (*ScreenshotResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = "screenshot.png"
	}

	screenshotOpts := playwright.PageScreenshotOptions{
		Path:     &path,
		FullPage: &opts.FullPage,
	}
	if _, err := s.Page.Screenshot(screenshotOpts); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	return &ScreenshotResult{Status: statusSuccess, Path: absPath}, nil
}

// Content extracts HTML or text content, optionally scoped to a selector.
func (s *Session) Content(opts ContentOptions) (*ContentResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	maxLength := opts.MaxLength
	if maxLength == 0 {
		maxLength = DefaultMaxLength
	}

	var content string
	switch opts.ContentType {
	case "html":
		raw, err := s.extractHTML(opts.Selector)
		if err != nil {
			return nil, err
		}
		if opts.Clean {
			cleaned, err := cleanHTML(raw, maxLength)
			if err != nil {
				return nil, err
			}
			content = cleaned.HTML
		} else {
			content = truncateContent(raw, maxLength)
		}
	case "text":
		target := opts.Selector
		if target == "" {
			target = "body"
		}
		text, err := s.Page.InnerText(target)
		if err != nil {
			return nil, fmt.Errorf("text extraction failed: %w", err)
		}
		content = truncateContent(text, maxLength)
	default:
		return nil, fmt.Errorf("invalid content_type: %s", opts.ContentType)
	}

	return &ContentResult{
		Status:      statusSuccess,
		URL:         opts.URL,
		ContentType: opts.ContentType,
		Content:     content,
	}, nil
}

// extractHTML returns the page's HTML, or the inner HTML of the first
// element matching selector.
func (s *Session) extractHTML(selector string) (string, error) {
	if selector == "" {
		content, err := s.Page.Content()
		if err != nil {
			return "", fmt.Errorf("content extraction failed: %w", err)
		}
		return content, nil
	}

	element, err := s.Page.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}
	content, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return content, nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(opts ClickOptions) (*ClickResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	if err := s.Page.Click(opts.Selector); err != nil {
		return nil, fmt.Errorf("click failed: %w", err)
	}

	// The click may have triggered a navigation; report the resulting URL.
	return &ClickResult{
		Status:   statusSuccess,
		Selector: opts.Selector,
		URL:      s.Page.URL(),
	}, nil
}

// Fill types a value into the input matching the selector.
func (s *Session) Fill(opts FillOptions) (*FillResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	if err := s.Page.Fill(opts.Selector, opts.Value); err != nil {
		return nil, fmt.Errorf("fill failed: %w", err)
	}

	return &FillResult{
		Status:   statusSuccess,
		Selector: opts.Selector,
		Value:    opts.Value,
	}, nil
}

// Evaluate runs JavaScript in the page context and returns its value.
func (s *Session) Evaluate(opts EvaluateOptions) (*EvaluateResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	value, err := s.Page.Evaluate(opts.Script)
	if err != nil {
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}

	return &EvaluateResult{Status: statusSuccess, Result: value}, nil
}

// Attribute reads an attribute from the first element matching the
// selector.
func (s *Session) Attribute(opts AttributeOptions) (*AttributeResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	element, err := s.Page.QuerySelector(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return nil, fmt.Errorf("no element found matching selector: %s", opts.Selector)
	}

	value, err := element.GetAttribute(opts.Attribute)
	if err != nil {
		return nil, fmt.Errorf("attribute read failed: %w", err)
	}

	return &AttributeResult{
		Status:    statusSuccess,
		Selector:  opts.Selector,
		Attribute: opts.Attribute,
		Value:     &value,
	}, nil
}

// WaitFor waits for the selector to reach the requested state.
func (s *Session) WaitFor(opts WaitOptions) (*WaitResult, error) {
	if _, err := s.goTo(opts.URL, ""); err != nil {
		return nil, err
	}

	state := opts.State
	if state == "" {
		state = "visible"
	}
	switch state {
	case "visible", "hidden", "attached":
	default:
		return nil, fmt.Errorf("invalid state: %s (must be 'visible', 'hidden', or 'attached')", state)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	waitState := playwright.WaitForSelectorState(state)
	waitOpts := playwright.PageWaitForSelectorOptions{
		State:   &waitState,
		Timeout: &timeout,
	}
	if _, err := s.Page.WaitForSelector(opts.Selector, waitOpts); err != nil {
		return nil, fmt.Errorf("wait failed: %w", err)
	}

	return &WaitResult{
		Status:   statusSuccess,
		Selector: opts.Selector,
		State:    state,
	}, nil
}

// truncateContent bounds extracted content, marking the cut so callers know
// the page had more.
func truncateContent(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + fmt.Sprintf("\n\n[Content truncated: %d of %d bytes shown]", maxLength, len(content))
}
