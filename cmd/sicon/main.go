package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hpungsan/sicon/internal/config"
	"github.com/hpungsan/sicon/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"search": true, "info": true, "resolve": true, "download": true,
	"history": true, "shell": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// Global flags (--help, --json, -q ...) → CLI
	return len(arg) > 1 && arg[0] == '-'
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
       _
   ___(_) ___ ___  _ __
  / __| |/ __/ _ \| '_ \
  \__ \ | (_| (_) | | | |
  |___/_|\___\___/|_| |_|

  Brand icon lookup, fetch and render

  Usage: sicon <command> [options]
         sicon --help

  MCP server mode requires piped input.`)
}

// loadConfig merges defaults, ~/.sicon/config.json, the nearest project
// .sicon/config.json and SICON_* variables.
func loadConfig(baseDir string) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	cfg, err := config.LoadWithRepo(baseDir, wd)
	if err != nil {
		return nil, err
	}
	cfg, err = config.ApplyEnv(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// A .env in the working directory feeds SICON_* variables; absence is fine
	_ = godotenv.Load()

	// Handle --help/--version before config load (nothing else needed)
	if isHelpOrVersion(os.Args) {
		app := newCLIApp(&runtime{out: os.Stdout, errOut: os.Stderr, cfg: config.DefaultConfig()})
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".sicon")

	cfg, err := loadConfig(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// CLI mode: known subcommand
	if isCLIMode(os.Args) {
		rt := &runtime{baseDir: baseDir, cfg: cfg, out: os.Stdout, errOut: os.Stderr}
		defer rt.Close()
		app := newCLIApp(rt)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			rt.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'sicon --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default). Stdout carries the protocol; logs go to stderr.
	logger := log.New(os.Stderr, "sicon: ", log.LstdFlags)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Printf("warning: unknown tools in disabled_tools: %v", unknown)
	}

	svc, closeFn, err := newService(baseDir, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	if err := mcp.Run(svc, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
}
