package mcp

// ToolName identifies one of the eight browser automation tools. The set is
// closed: dispatch is an exhaustive switch over these constants, so adding
// a tool is a compile-time-checked change.
type ToolName string

const (
	ToolNavigate      ToolName = "navigate"
	ToolScreenshot    ToolName = "screenshot"
	ToolGetContent    ToolName = "get_content"
	ToolClick         ToolName = "click"
	ToolFill          ToolName = "fill"
	ToolExecuteScript ToolName = "execute_script"
	ToolGetAttribute  ToolName = "get_attribute"
	ToolWaitFor       ToolName = "wait_for"
)

// ToolNames lists every registered tool in catalog order.
func ToolNames() []ToolName {
	return []ToolName{
		ToolNavigate,
		ToolScreenshot,
		ToolGetContent,
		ToolClick,
		ToolFill,
		ToolExecuteScript,
		ToolGetAttribute,
		ToolWaitFor,
	}
}

// ToolDefinition describes one tool for tools/list consumers.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Registry is the immutable tool catalog, built once at startup.
//
// The schemas are advisory: the dispatcher does not validate arguments
// against them. A missing required field surfaces as the tool's own
// in-band error result.
type Registry struct {
	definitions []ToolDefinition
	names       map[string]ToolName
}

// NewRegistry builds the catalog of the eight browser tools.
func NewRegistry() *Registry {
	definitions := []ToolDefinition{
		{
			Name:        string(ToolNavigate),
			Description: "Navigate to a URL and return page metadata (title, HTTP status).",
			InputSchema: objectSchema(map[string]any{
				"url": stringProp("URL to navigate to"),
				"wait_until": enumProp("When to consider navigation complete",
					[]string{"load", "domcontentloaded", "networkidle"}, "load"),
			}, []string{"url"}),
		},
		{
			Name:        string(ToolScreenshot),
			Description: "Take a screenshot of a web page and save it to a file.",
			InputSchema: objectSchema(map[string]any{
				"url":       stringProp("URL to screenshot"),
				"path":      stringPropDefault("File path to save the screenshot", "screenshot.png"),
				"full_page": boolProp("Capture the full scrollable page", false),
			}, []string{"url"}),
		},
		{
			Name:        string(ToolGetContent),
			Description: "Get HTML or text content from a web page, optionally scoped to a CSS selector.",
			InputSchema: objectSchema(map[string]any{
				"url":          stringProp("URL to retrieve content from"),
				"content_type": enumProp("Type of content to retrieve", []string{"html", "text"}, ""),
				"selector":     stringProp("CSS selector to scope extraction (optional)"),
				"max_length":   integerProp("Maximum content length in bytes before truncation"),
				"clean":        boolProp("Strip scripts, styles, and noise from HTML content", false),
			}, []string{"url", "content_type"}),
		},
		{
			Name:        string(ToolClick),
			Description: "Navigate to a URL and click an element matching a CSS selector.",
			InputSchema: objectSchema(map[string]any{
				"url":      stringProp("URL to navigate to"),
				"selector": stringProp("CSS selector of element to click"),
			}, []string{"url", "selector"}),
		},
		{
			Name:        string(ToolFill),
			Description: "Navigate to a URL and fill a form field with a value.",
			InputSchema: objectSchema(map[string]any{
				"url":      stringProp("URL to navigate to"),
				"selector": stringProp("CSS selector of the input field"),
				"value":    stringProp("Value to type into the field"),
			}, []string{"url", "selector", "value"}),
		},
		{
			Name:        string(ToolExecuteScript),
			Description: "Navigate to a URL and execute JavaScript in the page context.",
			InputSchema: objectSchema(map[string]any{
				"url":    stringProp("URL to navigate to"),
				"script": stringProp("JavaScript code to evaluate"),
			}, []string{"url", "script"}),
		},
		{
			Name:        string(ToolGetAttribute),
			Description: "Navigate to a URL and read an attribute from a DOM element.",
			InputSchema: objectSchema(map[string]any{
				"url":       stringProp("URL to navigate to"),
				"selector":  stringProp("CSS selector of the element"),
				"attribute": stringProp("Attribute name to read (e.g. 'href', 'src')"),
			}, []string{"url", "selector", "attribute"}),
		},
		{
			Name:        string(ToolWaitFor),
			Description: "Navigate to a URL and wait for a CSS selector to reach a given state.",
			InputSchema: objectSchema(map[string]any{
				"url":      stringProp("URL to navigate to"),
				"selector": stringProp("CSS selector to wait for"),
				"state": enumProp("Element state to wait for",
					[]string{"visible", "hidden", "attached"}, "visible"),
				"timeout": integerProp("Timeout in milliseconds (default 30000)"),
			}, []string{"url", "selector"}),
		},
	}

	names := make(map[string]ToolName, len(definitions))
	for _, name := range ToolNames() {
		names[string(name)] = name
	}

	return &Registry{definitions: definitions, names: names}
}

// Definitions returns the full, unfiltered catalog.
func (r *Registry) Definitions() []ToolDefinition {
	return r.definitions
}

// Lookup resolves a wire-level tool name to its ToolName constant.
func (r *Registry) Lookup(name string) (ToolName, bool) {
	tool, ok := r.names[name]
	return tool, ok
}

// objectSchema creates a common JSON schema structure for a tool with the
// given properties and required fields. Every tool additionally accepts the
// optional browser engine and headless flags.
func objectSchema(properties map[string]any, required []string) map[string]any {
	properties["browser"] = enumProp("Browser engine family",
		[]string{"chromium", "firefox", "webkit"}, "chromium")
	properties["headless"] = boolProp("Run the browser without a visible window", true)

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func stringPropDefault(description, def string) map[string]any {
	return map[string]any{"type": "string", "description": description, "default": def}
}

func boolProp(description string, def bool) map[string]any {
	return map[string]any{"type": "boolean", "description": description, "default": def}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func enumProp(description string, values []string, def string) map[string]any {
	prop := map[string]any{"type": "string", "description": description, "enum": values}
	if def != "" {
		prop["default"] = def
	}
	return prop
}
