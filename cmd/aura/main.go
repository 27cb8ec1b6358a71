// aura is the sentiment analysis backend.
//
//	aura [--env-file .env] [serve]      start the HTTP server (default)
//	aura analyze [--heuristic] <text>   analyze text once and print JSON
//	aura --version | --help
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/matiasleandrokruk/aura/internal/version"
)

const (
	exitOK     = 0
	exitError  = 1
	exitUsage  = 2
	defaultEnv = ".env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("aura", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.BoolP("help", "h", false, "Show help")
	envFile := fs.String("env-file", defaultEnv, "Load environment variables from this file if it exists")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return exitOK
	}
	if *showHelp {
		printHelp(out)
		return exitOK
	}

	command, rest := "serve", fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "serve":
		return runServe(ctx, rest, *envFile, errOut)
	case "analyze":
		return runAnalyze(ctx, rest, *envFile, in, out, errOut)
	case "help":
		printHelp(out)
		return exitOK
	default:
		fmt.Fprintf(errOut, "Error: unknown command %q\n", command) //nolint:errcheck
		printHelp(errOut)
		return exitUsage
	}
}

func printHelp(out io.Writer) {
	helpText := `aura - sentiment analysis backend

Usage:
  aura [options] [command]

Options:
  --env-file <path>   Load environment from this file (default ".env")
  --version           Show version information
  --help              Show this help message

Commands:
  serve               Start the HTTP server (default)
  analyze <text>      Analyze text once and print the JSON result
                      (reads stdin when text is "-" or omitted)

Environment:
  LLM_PROVIDER        openrouter (default) | groq
  LLM_API_KEY         provider key; empty runs heuristic-only
  HTTP_HOST/HTTP_PORT listen address (default 0.0.0.0:8000)
  ANALYSIS_DB_PATH    SQLite file for analysis history (optional)
  VALKEY_ADDR         Valkey address for the result cache (optional)

Examples:
  aura --version
  LLM_PROVIDER=groq LLM_API_KEY=... aura serve
  echo "I love this" | aura analyze`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}

func readText(args []string, in io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
