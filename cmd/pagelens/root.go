package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/leofalp/pagelens/core/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const appName = "pagelens"

// errAnalysisFailed signals that an error envelope was printed; main exits
// non-zero without printing anything else.
var errAnalysisFailed = errors.New("analysis failed")

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"endpoint":      "inference.endpoint",
	"model":         "inference.model",
	"extract-mode":  "extract.mode",
	"verify-tls":    "fetch.verify_tls",
	"fetch-timeout": "fetch.timeout",
}

type globalOptions struct {
	configFile string
	envFile    string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Analyze web pages with a local Ollama model",
		Long: `pagelens fetches a web page, extracts its text and asks a local Ollama
model to analyze it. It exposes this as the process_url_with_llm MCP tool
(pagelens serve) and as plain commands (pagelens analyze, pagelens call).

Settings come from defaults, --config, a .env file, PAGELENS_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (YAML, TOML or JSON)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file (default .env when present, - to skip)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("endpoint", "", "Ollama chat endpoint")
	flags.String("model", "", "Ollama model")
	flags.String("extract-mode", "", "text extraction mode (tags, markdown, readability)")
	flags.Bool("verify-tls", false, "verify TLS certificates of fetched pages")
	flags.Duration("fetch-timeout", 0, "page fetch timeout, retries included")

	cmd.AddCommand(
		serveCmd(opts),
		analyzeCmd(opts),
		callCmd(opts),
		versionCmd(),
	)
	return cmd
}

// loadConfig resolves the configuration for cmd, binding the flags that were
// set on the command line, plus extra command-specific ones.
func loadConfig(cmd *cobra.Command, opts *globalOptions, extra map[string]string) (*config.Config, error) {
	bound := make(map[string]*pflag.Flag, len(flagKeys)+len(extra))
	for name, key := range flagKeys {
		bound[key] = cmd.Flags().Lookup(name)
	}
	for name, key := range extra {
		bound[key] = cmd.Flags().Lookup(name)
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
		Flags:      bound,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s version %s\n", appName, Version)
}
