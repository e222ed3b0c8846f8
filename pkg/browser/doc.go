// Package browser drives Playwright for the execution bridge's direct
// backend.
//
// Unlike a persistent session pool, every tool call gets a throwaway
// Session: one freshly launched browser, one isolated context, one page.
// The session is opened immediately before the tool's handler runs and
// closed unconditionally afterwards, on success or failure. Sessions are
// never reused across calls and never shared, so page state can never leak
// from one call into the next.
//
// Three engine families are supported: chromium, firefox, and webkit.
package browser
