package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/mockup-tools-mcp/internal/config"
	"github.com/ironsheep/mockup-tools-mcp/internal/logging"
	"github.com/ironsheep/mockup-tools-mcp/internal/model"
	"github.com/ironsheep/mockup-tools-mcp/internal/ocr"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
	"github.com/ironsheep/mockup-tools-mcp/internal/recognize"
	"github.com/ironsheep/mockup-tools-mcp/internal/render"
	"github.com/ironsheep/mockup-tools-mcp/internal/server"
	"github.com/ironsheep/mockup-tools-mcp/internal/source"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
}

// setup loads the configuration and builds the stderr logger.
func (g *globals) setup() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	log, err := logging.FromEnv(cfg.LogLevel)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "mockup-mcp",
		Short: "Recognize UI components in ASCII mockups",
		Long: `mockup-mcp turns box-drawing mockups into a component model.

Run without a subcommand it serves the MCP protocol over stdin/stdout,
the same as "mockup-mcp serve". Logs go to stderr.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g)
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	root.AddCommand(
		newServeCmd(g),
		newParseCmd(g),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g)
		},
	}
}

func runServe(ctx context.Context, g *globals) error {
	cfg, log, err := g.setup()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, log, Version)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Str("commit", GitCommit).Msg("mockup MCP server starting")
	err = srv.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type parseFlags struct {
	format   string
	patterns []string
}

func newParseCmd(g *globals) *cobra.Command {
	f := &parseFlags{}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Recognize a mockup file and print the result",
		Long: `Recognize a mockup and print it as an indented component tree,
the full model as JSON, or the text re-rendered from the model.

With no file, or "-", the mockup is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return runParse(cmd, g, f, path)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "tree", "output format: tree, json or text")
	cmd.Flags().StringSliceVarP(&f.patterns, "patterns", "p", nil, "extra pattern files, loaded after the configured ones")
	return cmd
}

func runParse(cmd *cobra.Command, g *globals, f *parseFlags, path string) error {
	switch f.format {
	case "tree", "json", "text":
	default:
		return fmt.Errorf("unknown format %q", f.format)
	}

	cfg, log, err := g.setup()
	if err != nil {
		return err
	}
	cfg.Patterns = append(cfg.Patterns, f.patterns...)

	reg := pattern.NewRegistry()
	if err := cfg.LoadPatterns(reg); err != nil {
		return err
	}
	p, err := recognize.New(reg, cfg, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var m *model.ComponentModel
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		m, err = p.Source(ctx, string(data))
		if err != nil {
			return err
		}
	} else {
		grid, err := source.NewCache(p.SourceOptions()).Load(path)
		if err != nil {
			return err
		}
		if m, err = p.Run(ctx, grid); err != nil {
			return err
		}
	}
	return writeModel(cmd.OutOrStdout(), m, f.format)
}

func writeModel(w io.Writer, m *model.ComponentModel, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "text":
		_, err := fmt.Fprintln(w, render.Text(m))
		return err
	default:
		return render.Tree(w, m)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mockup-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Tesseract: %s\n", ocr.Version())
		},
	}
}
