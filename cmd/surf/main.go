// Command surf is a stdio tool server exposing browser automation to an
// MCP client: JSON-RPC 2.0 with Content-Length framing on stdin/stdout,
// diagnostics on stderr. Run with no subcommand (or "serve") it speaks the
// protocol; "exec" performs a single tool invocation and prints the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/surf/pkg/bridge"
	"github.com/entrhq/surf/pkg/config"
	"github.com/entrhq/surf/pkg/logging"
	"github.com/entrhq/surf/pkg/mcp"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "surf",
		Short:        "surf: a stdio tool server for browser automation",
		Long:         "Surf exposes a fixed catalog of browser automation tools (navigate,\nscreenshot, content extraction, click, fill, script evaluation, attribute\nreads, waits) over JSON-RPC 2.0 on stdin/stdout.",
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")

	root.AddCommand(serveCmd())
	root.AddCommand(execCmd())
	root.AddCommand(toolsCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the stdio tool server",
		RunE:  runServe,
	}
}

// loadEnvironment loads configuration and builds the component logger
// factory. The returned cleanup closes the optional log file.
func loadEnvironment() (*config.Config, func(component string) *logging.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var sinks []io.Writer
	cleanup := func() {}
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sinks = append(sinks, file)
		cleanup = func() { file.Close() }
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	newLogger := func(component string) *logging.Logger {
		logger := logging.New(component, sinks...)
		logger.SetLevel(level)
		return logger
	}
	return cfg, newLogger, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, newLogger, cleanup, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bridge.New(cfg, newLogger("bridge"))
	defer b.Close()

	channel := mcp.NewChannel(os.Stdin, os.Stdout, newLogger("channel"))
	server := mcp.NewServer(channel, mcp.NewRegistry(), b, newLogger("server"))
	return server.Run(ctx)
}

func execCmd() *cobra.Command {
	var (
		toolFlag   string
		paramsFlag string
		modeFlag   string
	)

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one tool invocation and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, newLogger, cleanup, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer cleanup()

			registry := mcp.NewRegistry()
			tool, ok := registry.Lookup(toolFlag)
			if !ok {
				return fmt.Errorf("unknown tool: %s", toolFlag)
			}

			if !json.Valid([]byte(paramsFlag)) {
				return fmt.Errorf("--params must be a JSON object")
			}

			mode := bridge.Mode(cfg.Bridge.Mode)
			switch modeFlag {
			case "":
			case string(bridge.ModeDirect), string(bridge.ModeCLI):
				mode = bridge.Mode(modeFlag)
			default:
				return fmt.Errorf("invalid mode %q (must be direct or cli)", modeFlag)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b := bridge.New(cfg, newLogger("bridge"))
			defer b.Close()

			result, _ := b.ExecuteMode(ctx, tool, json.RawMessage(paramsFlag), mode)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&toolFlag, "tool", "", "tool name to invoke")
	cmd.Flags().StringVar(&paramsFlag, "params", "{}", "JSON object of tool arguments")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "execution mode: direct or cli (default: configured mode)")
	_ = cmd.MarkFlagRequired("tool")
	return cmd
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(mcp.NewRegistry().Definitions(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s v%s\n", mcp.ServerName, mcp.ServerVersion)
		},
	}
}
