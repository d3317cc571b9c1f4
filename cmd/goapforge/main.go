package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"goapforge/internal/audit"
	"goapforge/internal/logging"
	"goapforge/internal/tracelog"
	"goapforge/internal/workspace"
)

const appName = "goapforge"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.String("log-level", "", "Log level: debug, info, warn, error (default: goapforge.yml log.level)")
	flag.String("log-format", "", "Log format: text or json (default: goapforge.yml log.format)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: goal-oriented action planning with a plan cache\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s --workspace DIR [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init    Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  domain  Validate and lint domain documents")
		fmt.Fprintln(os.Stderr, "  plan    Generate, run, show and diff plans")
		fmt.Fprintln(os.Stderr, "  cache   Benchmark the plan cache")
		fmt.Fprintln(os.Stderr, "  trace   Read planning traces")
		fmt.Fprintln(os.Stderr, "  audit   Read the audit log")
		fmt.Fprintln(os.Stderr, "  help    Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	globals, remaining, err := extractGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var run func([]string, globalFlags) error
	switch args[0] {
	case "init":
		run = runInit
	case "domain":
		run = runDomain
	case "plan":
		run = runPlan
	case "cache":
		run = runCache
	case "trace":
		run = runTrace
	case "audit":
		run = runAudit
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err := run(args[1:], globals); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	Workspace string
	LogLevel  string
	LogFormat string
}

// extractGlobalFlags pulls the global flags out of args wherever they appear,
// so they may precede or follow the subcommand.
func extractGlobalFlags(args []string) (globalFlags, []string, error) {
	var g globalFlags
	targets := map[string]*string{
		"--workspace":  &g.Workspace,
		"--log-level":  &g.LogLevel,
		"--log-format": &g.LogFormat,
	}
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if dst, ok := targets[arg]; ok {
			if i+1 >= len(args) {
				return globalFlags{}, nil, fmt.Errorf("%s requires a value", arg)
			}
			*dst = args[i+1]
			i++
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			if dst, known := targets[name]; known {
				*dst = value
				continue
			}
		}
		remaining = append(remaining, arg)
	}
	return g, remaining, nil
}

// app is the per-invocation environment: resolved workspace, config and the
// logging, audit and trace channels derived from them.
type app struct {
	ws     *workspace.Workspace
	cfg    workspace.Config
	logger *slog.Logger
	audit  *audit.Logger
	trace  *tracelog.Writer
}

func newApp(g globalFlags) (*app, error) {
	root := strings.TrimSpace(g.Workspace)
	if root == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return nil, err
	}
	cfg, err := ws.LoadConfig()
	if err != nil {
		return nil, err
	}
	level, format, err := logging.Resolve(g.LogLevel, g.LogFormat, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{
		ws:     ws,
		cfg:    cfg,
		logger: logging.New(os.Stderr, level, format),
		audit:  audit.NewLogger(auditDBPath(ws)),
	}
	if cfg.Trace.Enabled {
		a.trace = tracelog.NewWriter(ws.TracesDir)
	}
	return a, nil
}

// auditDBPath prefers GOAPFORGE_AUDIT_DB over the workspace default.
func auditDBPath(ws *workspace.Workspace) string {
	if env := strings.TrimSpace(os.Getenv(audit.EnvDBPath)); env != "" {
		return env
	}
	return ws.AuditDBPath
}

func (a *app) close() {
	if a.trace == nil {
		return
	}
	if err := a.trace.Close(); err != nil {
		a.logger.Warn("close trace writer", "err", err)
	}
}

func (a *app) logEvent(eventType string, payload map[string]any) {
	if err := a.audit.LogEvent("cli", eventType, payload); err != nil {
		a.logger.Warn("audit log failed", "type", eventType, "err", err)
	}
}

func runInit(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(g.Workspace) == "" {
		return fmt.Errorf("--workspace is required")
	}

	ws, written, err := workspace.Init(g.Workspace)
	if err != nil {
		return err
	}
	a, err := newApp(globalFlags{Workspace: ws.Root, LogLevel: g.LogLevel, LogFormat: g.LogFormat})
	if err != nil {
		return err
	}
	defer a.close()
	a.logEvent(audit.EventWorkspaceInit, map[string]any{
		"workspace": ws.Root,
		"written":   written,
	})

	fmt.Fprintf(os.Stdout, "Initialized workspace: %s\n", ws.Root)
	for _, path := range written {
		fmt.Fprintf(os.Stdout, "  wrote %s\n", path)
	}
	fmt.Fprintln(os.Stdout, "Next steps:")
	fmt.Fprintf(os.Stdout, "  %s --workspace %s domain validate\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s --workspace %s plan generate --scenario forage\n", appName, ws.Root)
	fmt.Fprintf(os.Stdout, "  %s --workspace %s plan run --scenario forage\n", appName, ws.Root)
	return nil
}

func missingSubcommand(args []string) bool {
	return len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help"
}
