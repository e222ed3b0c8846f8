package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/logging"
	"github.com/entrhq/surf/pkg/mcp"
)

// commandRunner executes the driver binary. The seam exists so tests can
// record argv vectors and script outputs without spawning processes.
type commandRunner interface {
	Run(ctx context.Context, path string, args []string) (stdout, stderr []byte, err error)
}

// execRunner runs the driver with os/exec. The context kills the process
// on timeout or shutdown.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, path string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// RawResult wraps driver output that was not valid JSON.
type RawResult struct {
	Status    string `json:"status"`
	RawOutput string `json:"raw_output"`
}

// CLIBackend delegates a subset of tools (navigate, screenshot,
// get_content) to an external command-line driver. The invocation is
// always a parameterized argument vector, never a shell string: tool
// arguments originate from an untrusted upstream caller.
type CLIBackend struct {
	driverPath string
	timeout    time.Duration
	runner     commandRunner
	log        *logging.Logger
}

// NewCLIBackend creates the CLI backend from the bridge configuration.
func NewCLIBackend(cfg config.BridgeConfig, log *logging.Logger) *CLIBackend {
	return &CLIBackend{
		driverPath: cfg.CLIPath,
		timeout:    time.Duration(cfg.CLITimeoutSeconds) * time.Second,
		runner:     execRunner{},
		log:        log,
	}
}

// Execute maps the tool to a driver subcommand and runs it. Tools without
// a CLI mapping fail in-band rather than silently switching backends.
func (c *CLIBackend) Execute(ctx context.Context, inv *Invocation) (any, error) {
	if c.driverPath == "" {
		return nil, fmt.Errorf("cli driver path not configured (set bridge.cli_path or PLAYWRIGHT_CLI_PATH)")
	}

	argv, err := c.argv(inv)
	if err != nil {
		return nil, err
	}

	return c.run(ctx, inv, argv)
}

// argv builds the driver invocation for the tools with a CLI mapping. The
// --json flag always comes first so output is machine-readable.
func (c *CLIBackend) argv(inv *Invocation) ([]string, error) {
	switch inv.Tool {
	case mcp.ToolNavigate:
		if _, err := parseNavigateArgs(inv.Args); err != nil {
			return nil, err
		}
		argv := []string{"--json", "launch_browser", "--browser", inv.Engine}
		if inv.Headless {
			argv = append(argv, "--headless")
		}
		return argv, nil

	case mcp.ToolScreenshot:
		args, err := parseScreenshotArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		argv := []string{
			"--json", "navigate_and_screenshot",
			"--url", args.URL,
			"--path", args.Path,
			"--browser", inv.Engine,
		}
		if inv.Headless {
			argv = append(argv, "--headless")
		}
		if args.FullPage {
			argv = append(argv, "--full_page")
		}
		return argv, nil

	case mcp.ToolGetContent:
		args, err := parseGetContentArgs(inv.Args)
		if err != nil {
			return nil, err
		}
		argv := []string{
			"--json", "get_content",
			"--url", args.URL,
			"--type", args.ContentType,
			"--browser", inv.Engine,
		}
		if inv.Headless {
			argv = append(argv, "--headless")
		}
		return argv, nil

	default:
		return nil, fmt.Errorf("tool %q is not available in cli mode; use direct mode", inv.Tool)
	}
}

// run executes the driver off the dispatch goroutine under a timeout
// context, so a hung driver cannot wedge the server past its deadline or
// survive a shutdown.
func (c *CLIBackend) run(ctx context.Context, inv *Invocation, argv []string) (any, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.Debugf("call %s: running %s %s", inv.ID, c.driverPath, strings.Join(argv, " "))

	type outcome struct {
		stdout []byte
		stderr []byte
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		stdout, stderr, err := c.runner.Run(runCtx, c.driverPath, argv)
		done <- outcome{stdout: stdout, stderr: stderr, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		// CommandContext kills the subprocess; the goroutine drains into
		// the buffered channel.
		return nil, fmt.Errorf("driver did not complete: %v", runCtx.Err())
	}

	if out.err != nil {
		message := strings.TrimSpace(string(out.stderr))
		if message == "" {
			if exitErr, ok := out.err.(*exec.ExitError); ok {
				message = "exit code " + strconv.Itoa(exitErr.ExitCode())
			} else {
				message = out.err.Error()
			}
		}
		return nil, fmt.Errorf("driver failed: %s", message)
	}

	// Driver output is JSON when the --json flag is honored; anything else
	// is wrapped raw rather than discarded.
	var parsed map[string]any
	if err := json.Unmarshal(out.stdout, &parsed); err != nil {
		return RawResult{Status: "success", RawOutput: strings.TrimSpace(string(out.stdout))}, nil
	}
	return parsed, nil
}
