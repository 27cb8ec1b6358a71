package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/infra/config"
	"github.com/matiasleandrokruk/aura/internal/infra/llm"
	"github.com/matiasleandrokruk/aura/internal/logging"
)

type analyzeOutput struct {
	analysis.Result
	Source  string `json:"source,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// runAnalyze runs one analysis through the same orchestrator the server uses.
func runAnalyze(ctx context.Context, args []string, envFile string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	heuristicOnly := fs.Bool("heuristic", false, "Skip the LLM provider")
	verbose := fs.BoolP("verbose", "v", false, "Include source and failure kind in the output")
	pretty := fs.Bool("pretty", false, "Indent JSON output")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitUsage
	}

	text, err := readText(fs.Args(), in)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitError
	}

	var outcome analysis.Outcome
	if *heuristicOnly {
		outcome = analysis.Outcome{Result: analysis.AnalyzeHeuristic(text), Source: analysis.SourceHeuristic}
	} else {
		svc, err := newCLIService(envFile, errOut)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
			return exitError
		}
		outcome = svc.Analyze(ctx, text)
	}

	result := analyzeOutput{Result: outcome.Result}
	if *verbose {
		result.Source = string(outcome.Source)
		result.Failure = string(outcome.Failure)
	}

	enc := json.NewEncoder(out)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitError
	}
	return exitOK
}

func newCLIService(envFile string, errOut io.Writer) (*analysis.Service, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	pc, err := cfg.ProviderConfig()
	if err != nil {
		return nil, err
	}
	return analysis.NewService(pc, llm.NewChatCompletionProvider(pc), analysis.WithLogger(logger)), nil
}

func loadConfig(envFile string) (config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
