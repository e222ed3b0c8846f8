package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/surf/pkg/mcp"
)

// fakeRunner records the exact invocation and plays back scripted output.
type fakeRunner struct {
	path   string
	args   []string
	stdout []byte
	stderr []byte
	err    error
	called int

	// block, when set, holds the subprocess until the context expires.
	block bool
}

func (r *fakeRunner) Run(ctx context.Context, path string, args []string) ([]byte, []byte, error) {
	r.called++
	r.path = path
	r.args = args
	if r.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return r.stdout, r.stderr, r.err
}

func newTestCLIBackend(runner *fakeRunner) *CLIBackend {
	return &CLIBackend{
		driverPath: "/opt/playwright-cli",
		timeout:    5 * time.Second,
		runner:     runner,
		log:        testLogger(),
	}
}

func cliInvocation(tool mcp.ToolName, args string) *Invocation {
	inv := invocation(tool, args)
	inv.Mode = ModeCLI
	return inv
}

func TestCLIArgvNavigate(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{"status":"success"}`)}
	cli := newTestCLIBackend(runner)

	_, err := cli.Execute(context.Background(), cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.NoError(t, err)

	assert.Equal(t, "/opt/playwright-cli", runner.path)
	assert.Equal(t, []string{"--json", "launch_browser", "--browser", "chromium", "--headless"}, runner.args)
}

func TestCLIArgvScreenshot(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{"status":"success"}`)}
	cli := newTestCLIBackend(runner)

	inv := cliInvocation(mcp.ToolScreenshot, `{"url":"http://example.test","full_page":true}`)
	inv.Engine = "firefox"
	inv.Headless = false

	_, err := cli.Execute(context.Background(), inv)
	require.NoError(t, err)

	// Arguments travel as a vector, never through a shell; defaults fill in.
	assert.Equal(t, []string{
		"--json", "navigate_and_screenshot",
		"--url", "http://example.test",
		"--path", "screenshot.png",
		"--browser", "firefox",
		"--full_page",
	}, runner.args)
}

func TestCLIArgvGetContent(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{"status":"success"}`)}
	cli := newTestCLIBackend(runner)

	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolGetContent, `{"url":"http://example.test","content_type":"text"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"--json", "get_content",
		"--url", "http://example.test",
		"--type", "text",
		"--browser", "chromium",
		"--headless",
	}, runner.args)
}

func TestCLIArgvNeverInterpolatesHostileArguments(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{}`)}
	cli := newTestCLIBackend(runner)

	hostile := `http://example.test/;rm -rf /`
	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolGetContent, `{"url":"http://example.test/;rm -rf /","content_type":"text"}`))
	require.NoError(t, err)

	// The hostile URL stays a single argv element.
	assert.Contains(t, runner.args, hostile)
}

func TestCLIParsesJSONOutput(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(`{"status":"success","title":"Example"}`)}
	cli := newTestCLIBackend(runner)

	result, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.NoError(t, err)

	parsed := result.(map[string]any)
	assert.Equal(t, "success", parsed["status"])
	assert.Equal(t, "Example", parsed["title"])
}

func TestCLIFallsBackToRawOutput(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("browser launched\n")}
	cli := newTestCLIBackend(runner)

	result, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.NoError(t, err)

	assert.Equal(t, RawResult{Status: "success", RawOutput: "browser launched"}, result)
}

func TestCLIDriverFailureUsesStderr(t *testing.T) {
	runner := &fakeRunner{
		stderr: []byte("Error: browser binary not found\n"),
		err:    errors.New("exit status 1"),
	}
	cli := newTestCLIBackend(runner)

	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser binary not found")
}

func TestCLIDriverFailureWithEmptyStderr(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 3")}
	cli := newTestCLIBackend(runner)

	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestCLIUnmappedToolsFailInBand(t *testing.T) {
	for _, tool := range []mcp.ToolName{
		mcp.ToolClick, mcp.ToolFill, mcp.ToolExecuteScript, mcp.ToolGetAttribute, mcp.ToolWaitFor,
	} {
		t.Run(string(tool), func(t *testing.T) {
			runner := &fakeRunner{}
			cli := newTestCLIBackend(runner)

			_, err := cli.Execute(context.Background(),
				cliInvocation(tool, `{"url":"http://a.test","selector":"#x","value":"v","script":"1","attribute":"href"}`))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not available in cli mode")
			assert.Zero(t, runner.called, "unmapped tools must not invoke the driver")
		})
	}
}

func TestCLIMissingDriverPath(t *testing.T) {
	cli := &CLIBackend{timeout: time.Second, runner: &fakeRunner{}, log: testLogger()}

	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestCLITimeoutCancelsTheDriver(t *testing.T) {
	runner := &fakeRunner{block: true}
	cli := newTestCLIBackend(runner)
	cli.timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := cli.Execute(context.Background(),
		cliInvocation(mcp.ToolNavigate, `{"url":"http://example.test"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not complete")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCLIMissingArgumentsNeverReachTheDriver(t *testing.T) {
	runner := &fakeRunner{}
	cli := newTestCLIBackend(runner)

	_, err := cli.Execute(context.Background(), cliInvocation(mcp.ToolScreenshot, `{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required argument: url")
	assert.Zero(t, runner.called)
}
