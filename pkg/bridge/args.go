package bridge

import (
	"encoding/json"
	"fmt"
)

// The generic arguments object of each tools/call is parsed into the
// tool's own record at the dispatch boundary. A missing or malformed field
// becomes that tool's in-band error; nothing reaches a handler untyped.

// baseArgs are the fields every tool accepts.
type baseArgs struct {
	Browser  string `json:"browser"`
	Headless *bool  `json:"headless"`
}

type navigateArgs struct {
	URL       string `json:"url"`
	WaitUntil string `json:"wait_until"`
}

type screenshotArgs struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	FullPage bool   `json:"full_page"`
}

type getContentArgs struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Selector    string `json:"selector"`
	MaxLength   int    `json:"max_length"`
	Clean       bool   `json:"clean"`
}

type clickArgs struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
}

type fillArgs struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

type executeScriptArgs struct {
	URL    string `json:"url"`
	Script string `json:"script"`
}

type getAttributeArgs struct {
	URL       string `json:"url"`
	Selector  string `json:"selector"`
	Attribute string `json:"attribute"`
}

type waitForArgs struct {
	URL      string  `json:"url"`
	Selector string  `json:"selector"`
	State    string  `json:"state"`
	Timeout  float64 `json:"timeout"`
}

// decodeArgs unmarshals the raw arguments object into a typed record.
// Absent arguments decode as the zero record; required-field checks happen
// in the per-tool parse functions.
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

func errMissing(field string) error {
	return fmt.Errorf("missing required argument: %s", field)
}

func parseNavigateArgs(raw json.RawMessage) (navigateArgs, error) {
	var args navigateArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	return args, nil
}

func parseScreenshotArgs(raw json.RawMessage) (screenshotArgs, error) {
	var args screenshotArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Path == "" {
		args.Path = "screenshot.png"
	}
	return args, nil
}

func parseGetContentArgs(raw json.RawMessage) (getContentArgs, error) {
	var args getContentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.ContentType == "" {
		return args, errMissing("content_type")
	}
	return args, nil
}

func parseClickArgs(raw json.RawMessage) (clickArgs, error) {
	var args clickArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Selector == "" {
		return args, errMissing("selector")
	}
	return args, nil
}

func parseFillArgs(raw json.RawMessage) (fillArgs, error) {
	var args fillArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Selector == "" {
		return args, errMissing("selector")
	}
	if args.Value == "" {
		return args, errMissing("value")
	}
	return args, nil
}

func parseExecuteScriptArgs(raw json.RawMessage) (executeScriptArgs, error) {
	var args executeScriptArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Script == "" {
		return args, errMissing("script")
	}
	return args, nil
}

func parseGetAttributeArgs(raw json.RawMessage) (getAttributeArgs, error) {
	var args getAttributeArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Selector == "" {
		return args, errMissing("selector")
	}
	if args.Attribute == "" {
		return args, errMissing("attribute")
	}
	return args, nil
}

func parseWaitForArgs(raw json.RawMessage) (waitForArgs, error) {
	var args waitForArgs
	if err := decodeArgs(raw, &args); err != nil {
		return args, err
	}
	if args.URL == "" {
		return args, errMissing("url")
	}
	if args.Selector == "" {
		return args, errMissing("selector")
	}
	return args, nil
}
